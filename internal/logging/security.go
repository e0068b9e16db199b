// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package logging

import (
	"fmt"

	"go.uber.org/zap"
)

const (
	securityLevel = "WARN"
	appID         = "project-service"
)

// SecurityLogger writes events following https://cheatsheetseries.owasp.org/cheatsheets/Logging_Vocabulary_Cheat_Sheet.html
type SecurityLogger struct {
	l *zap.Logger
}

func (s *SecurityLogger) log(event, description string) {
	s.l.Warn(
		description,
		zap.String("type", "security"),
		zap.String("appid", appID),
		zap.String("event", event),
		zap.String("level", securityLevel),
	)
}

func (s *SecurityLogger) SystemStartup() {
	s.log("sys_startup", "project service started")
}

func (s *SecurityLogger) SystemShutdown() {
	s.log("sys_shutdown", "project service stopped")
}

func (s *SecurityLogger) AuthnLoginSuccess(userID string) {
	s.log(fmt.Sprintf("authn_login_success:%s", userID), fmt.Sprintf("user %s logged in", userID))
}

func (s *SecurityLogger) AuthnLoginFail(identifier string) {
	s.log(fmt.Sprintf("authn_login_fail:%s", identifier), fmt.Sprintf("failed login for %s", identifier))
}

func (s *SecurityLogger) AuthnTokenRevoked(userID string) {
	s.log(fmt.Sprintf("authn_token_revoked:%s", userID), fmt.Sprintf("token of user %s revoked", userID))
}

func (s *SecurityLogger) AuthzFailure(userID, resource string) {
	s.log(fmt.Sprintf("authz_fail:%s,%s", userID, resource), fmt.Sprintf("user %s attempted to access %s without permission", userID, resource))
}

func (s *SecurityLogger) AdminAction(userID, action, target string) {
	s.log(fmt.Sprintf("authz_admin:%s,%s", userID, action), fmt.Sprintf("user %s performed %s on %s", userID, action, target))
}

func (s *SecurityLogger) UserCreated(actorID, userID string) {
	s.log(fmt.Sprintf("user_created:%s,%s", actorID, userID), fmt.Sprintf("user %s created user %s", actorID, userID))
}

func (s *SecurityLogger) UserDeleted(actorID, userID string) {
	s.log(fmt.Sprintf("user_deleted:%s,%s", actorID, userID), fmt.Sprintf("user %s deleted user %s", actorID, userID))
}

func newSecurityLogger(l *zap.Logger) *SecurityLogger {
	return &SecurityLogger{l: l}
}
