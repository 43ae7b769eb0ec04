package store

import "fmt"

// PasscodeKey is the fixed storage key for the device app-lock passcode.
// The passcode locks the device, not an account, so it is not scoped per
// identity.
const PasscodeKey = "scholarmind_passcode"

// IdentityPrefix returns the storage key prefix owning all collections of
// one identity. Logout erases the whole prefix in one pass.
func IdentityPrefix(identityID string) string {
	return fmt.Sprintf("scholarmind_user_%s_", identityID)
}

// GoalsKey returns the storage key for an identity's goals collection
func GoalsKey(identityID string) string {
	return IdentityPrefix(identityID) + "goals"
}

// SubjectsKey returns the storage key for an identity's subjects collection
func SubjectsKey(identityID string) string {
	return IdentityPrefix(identityID) + "subjects"
}

// SessionsKey returns the storage key for an identity's sessions collection
func SessionsKey(identityID string) string {
	return IdentityPrefix(identityID) + "sessions"
}
