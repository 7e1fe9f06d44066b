package mpinauth

// HasPinAlready is the trust policy deciding whether PIN setup can be
// skipped after OTP verification. Any one signal claiming a PIN exists
// short-circuits setup: most-permissive wins. This deliberately trusts a
// possibly stale local flag over forcing a redundant setup screen; a
// server-side PIN reset performed on another device is only corrected when
// the subsequent login fails.
func HasPinAlready(signals PinSignals) bool {
	return signals.Server || signals.Local || signals.ParamSkip
}
