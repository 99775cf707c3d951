package crypto

import "crypto/sha256"

var (
	DefaultHashFunc = sha256.New
)

// DefaultHashBlockSize is the output size in bytes of DefaultHashFunc.
const DefaultHashBlockSize = sha256.Size
