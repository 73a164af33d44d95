package driven

import "errors"

// ErrEncryptionKeyInvalid is returned when a stored cookie was encrypted but the
// configured VPSMON_SECRET_KEY is missing or cannot open it.
var ErrEncryptionKeyInvalid = errors.New("stored cookie cannot be decrypted: check VPSMON_SECRET_KEY")
