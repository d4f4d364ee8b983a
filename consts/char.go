package consts

// Character sets
const (
	Number        = "0123456789"                   // Numbers
	Lowercase     = "abcdefghijklmnopqrstuvwxyz"   // Lowercase letters
	Uppercase     = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"   // Uppercase letters
	NumUpper      = Number + Uppercase             // Numbers + Uppercase letters
	LowerUpper    = Lowercase + Uppercase          // Lowercase + Uppercase letters
	NumLowerUpper = Number + Lowercase + Uppercase // Numbers + Lowercase + Uppercase letters
)

const (
	// MessageIDAlphabet is used for client generated message ids
	MessageIDAlphabet = NumLowerUpper
	MessageIDSize     = 20

	// JoinCodeAlphabet avoids lowercase so codes can be read aloud
	JoinCodeAlphabet = NumUpper
	JoinCodeSize     = 6
)
