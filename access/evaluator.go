// Package access answers "is capability X granted to this session" with a
// single deterministic rule, and holds the static role to module-access
// table used for navigation visibility.
//
// Evaluation is pure and synchronous: it reads an already-loaded session
// and never triggers a network call. Staleness after a permission edit is
// resolved by the caller refreshing the profile, not by polling here.
package access

import (
	"github.com/tmsuite/console-gateway/models"
	"go.uber.org/zap"
)

// Evaluator decides capability grants for session users.
type Evaluator struct {
	logger *zap.Logger
}

// NewEvaluator creates an Evaluator. The logger is used only for
// fail-closed diagnostics and may be zap.NewNop() in tests.
func NewEvaluator(logger *zap.Logger) *Evaluator {
	return &Evaluator{logger: logger}
}

// Can reports whether the user is granted the capability code.
//
// Rules, in order:
//   - a blank code is implicitly allowed (an unguarded feature passes),
//   - the owner role passes unconditionally,
//   - a nil user or empty permission set fails closed,
//   - otherwise the code must be an exact member of the permission set.
//
// Can never returns an error; missing data always evaluates to false.
func (e *Evaluator) Can(user *models.User, code string) bool {
	if code == "" {
		return true
	}
	if user == nil {
		return false
	}
	if user.ParsedRole().IsOwner() {
		return true
	}
	if len(user.Permissions) == 0 {
		e.logger.Warn("capability check against empty permission set",
			zap.String("user_id", user.ID),
			zap.String("role", user.Role),
			zap.String("code", code))
		return false
	}
	return user.HasPermission(code)
}

// CanAny reports whether at least one of the codes is granted. An empty
// or nil slice fails closed.
func (e *Evaluator) CanAny(user *models.User, codes []string) bool {
	if len(codes) == 0 {
		return false
	}
	for _, code := range codes {
		if e.Can(user, code) {
			return true
		}
	}
	return false
}
