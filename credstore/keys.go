package credstore

// Credential record keys. The per-phone pin flag is deliberately redundant
// with KeyPinSet: if either reads true, PIN setup must not be shown again
// for that phone.
const (
	KeyPhone            = "phone"
	KeyToken            = "token"
	KeyPinSet           = "pin_set"
	KeyTempPhone        = "temp_phone"
	KeyResetPhone       = "reset_phone"
	KeyBiometricEnabled = "biometric_enabled"
	KeyBiometricSession = "biometric_verified_session"
	KeyLastActiveTime   = "last_active_time"
	KeySessionExpired   = "session_expired"
	KeyProfile          = "user_profile"
	KeyDeviceID         = "device_id"

	pinSetPrefix    = "pin_set_"
	savedMPINPrefix = "saved_mpin_"
)

// PinSetKey returns the per-phone pin flag key.
func PinSetKey(phone string) string {
	return pinSetPrefix + phone
}

// SavedMPINKey returns the key holding the sealed MPIN for a phone.
func SavedMPINKey(phone string) string {
	return savedMPINPrefix + phone
}
