package recycle

import (
	"fmt"
	"unicode/utf16"

	"github.com/recyc-cli/recyc/internal/trash"
)

// getDisplayName renders one display-name form of an item and decodes it
func getDisplayName(folder Folder, item ItemID, form NameForm) (string, error) {
	buf, err := folder.DisplayNameOf(item, form)
	if err != nil {
		return "", err
	}
	return decodeWide(buf)
}

// getDetail retrieves a property value and coerces it to a string. The
// value is cleared whether or not the coercion succeeds.
func getDetail(folder Folder, item ItemID, key PropertyKey) (string, error) {
	v, err := folder.DetailsOf(item, key)
	if err != nil {
		return "", err
	}
	defer v.Clear()

	buf, err := v.CoerceString()
	if err != nil {
		return "", fmt.Errorf("coerce property %s/%d to string: %w", key.FmtID, key.PID, err)
	}
	return decodeWide(buf)
}

// getDateDetail retrieves a property value, coerces it to the automation
// date representation and converts it to Unix seconds.
func getDateDetail(folder Folder, item ItemID, key PropertyKey) (int64, error) {
	v, err := folder.DetailsOf(item, key)
	if err != nil {
		return 0, err
	}
	defer v.Clear()

	date, err := v.CoerceDate()
	if err != nil {
		return 0, fmt.Errorf("coerce property %s/%d to date: %w", key.FmtID, key.PID, err)
	}
	return VariantTimeToUnix(date)
}

// decodeWide turns a NUL-terminated UTF-16 buffer into a string. Buffers
// holding unpaired surrogates are reported as InvalidNameError instead of
// being silently patched up with replacement characters.
func decodeWide(buf []uint16) (string, error) {
	n := 0
	for n < len(buf) && buf[n] != 0 {
		n++
	}
	units := buf[:n]

	for i := 0; i < len(units); i++ {
		switch c := units[i]; {
		case c >= 0xD800 && c < 0xDC00:
			// high surrogate must be followed by a low one
			if i+1 >= len(units) || units[i+1] < 0xDC00 || units[i+1] >= 0xE000 {
				return "", &trash.InvalidNameError{Raw: append([]uint16(nil), units...)}
			}
			i++
		case c >= 0xDC00 && c < 0xE000:
			// stray low surrogate
			return "", &trash.InvalidNameError{Raw: append([]uint16(nil), units...)}
		}
	}
	return string(utf16.Decode(units)), nil
}
