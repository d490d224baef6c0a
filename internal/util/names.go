package util

import "strings"

// maxPersonNameComponent is the DICOM PN component group limit.
const maxPersonNameComponent = 64

// PersonName converts a display name ("Eleanor Vance") into the DICOM person
// name form ("VANCE^ELEANOR"). A single word becomes the family name; middle
// names are kept with the given name. Names without letters, like
// "Analyzed Case #42", are passed through upper-cased with '^' removed.
func PersonName(display string) string {
	fields := strings.Fields(display)
	if len(fields) == 0 {
		return ""
	}
	if len(fields) == 1 || !allWords(fields) {
		return clip(strings.ToUpper(strings.ReplaceAll(strings.Join(fields, " "), "^", "")))
	}

	family := fields[len(fields)-1]
	given := strings.Join(fields[:len(fields)-1], " ")
	return clip(strings.ToUpper(family + "^" + given))
}

// allWords reports whether every field reads as a name: letters, hyphens,
// apostrophes and a trailing period for initials.
func allWords(fields []string) bool {
	for _, f := range fields {
		for i, r := range f {
			switch {
			case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r > 127, r == '-', r == '\'':
			case r == '.' && i == len(f)-1:
			default:
				return false
			}
		}
	}
	return true
}

func clip(s string) string {
	if len(s) > maxPersonNameComponent {
		return s[:maxPersonNameComponent]
	}
	return s
}
