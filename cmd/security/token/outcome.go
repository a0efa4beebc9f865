package token

// Outcome classifies the result of verifying a bearer credential.
//
// Each value carries a distinct remediation for the caller:
// Absent and Expired map to 401 (authenticate / re-authenticate),
// Invalid maps to 403 (the credential was never valid), and
// Authenticated allows the request to proceed.
type Outcome int

const (
	// OutcomeAbsent means no credential was supplied at all.
	OutcomeAbsent Outcome = iota
	// OutcomeInvalid means a credential was supplied but its signature does
	// not verify, it is malformed, or it fails any other check.
	OutcomeInvalid
	// OutcomeExpired means the signature verifies but the token is past its
	// expiry.
	OutcomeExpired
	// OutcomeAuthenticated means the signature verifies and the token is
	// unexpired; the subject identifier is trustworthy.
	OutcomeAuthenticated
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAbsent:
		return "absent"
	case OutcomeInvalid:
		return "invalid"
	case OutcomeExpired:
		return "expired"
	case OutcomeAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}
