package protocol

// VideoIDLength is the length of a YouTube video id.
const VideoIDLength = 11

// IsValidVideoID reports whether id is exactly 11 characters from [A-Za-z0-9_-].
func IsValidVideoID(id string) bool {
	if len(id) != VideoIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '_' || c == '-':
		default:
			return false
		}
	}
	return true
}
