package validation

import (
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"
)

type valueValidator func(v any) error

var namedValidators = map[string]valueValidator{
	"cif":          validateTaxID,
	"email":        validateEmail,
	"phone":        validatePhone,
	"currency":     validateCurrency,
	"percentage":   validatePercentage,
	"positive":     validatePositive,
	"non_negative": validateNonNegative,
	"time":         validateTime,
	"iban":         validateIBAN,
}

var (
	reCIF   = regexp.MustCompile(`^[ABCDEFGHJKLMNPQRSUVW]\d{7}[0-9A-J]$`)
	reNIF   = regexp.MustCompile(`^\d{8}[A-Z]$`)
	reNIE   = regexp.MustCompile(`^[XYZ]\d{7}[A-Z]$`)
	reEmail = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	reTime  = regexp.MustCompile(`^([01]?\d|2[0-3]):[0-5]\d$`)
	reISO   = regexp.MustCompile(`^[A-Z]{3}$`)
)

const (
	nifLetters     = "TRWAGMYFPDXBNJZSQVHLCKE"
	cifControlChar = "JABCDEFGHI"
)

func normalizeTaxID(s string) string {
	return strings.ToUpper(strings.NewReplacer(" ", "", "-", "", ".", "").Replace(s))
}

// validateTaxID accepts Spanish CIF, NIF and NIE identifiers with their control character.
func validateTaxID(v any) error {
	s, ok := v.(string)
	if !ok {
		return errors.New("tax id must be a string")
	}
	id := normalizeTaxID(s)
	switch {
	case reNIF.MatchString(id):
		return checkNIF(id[:8], id[8])
	case reNIE.MatchString(id):
		prefix := strings.IndexByte("XYZ", id[0])
		return checkNIF(fmt.Sprintf("%d%s", prefix, id[1:8]), id[8])
	case reCIF.MatchString(id):
		return checkCIF(id)
	default:
		return fmt.Errorf("%q is not a CIF, NIF or NIE", s)
	}
}

func checkNIF(number string, letter byte) error {
	n := 0
	for _, r := range number {
		n = n*10 + int(r-'0')
	}
	if nifLetters[n%23] != letter {
		return fmt.Errorf("control letter mismatch")
	}
	return nil
}

func checkCIF(id string) error {
	sum := 0
	for i := 1; i <= 7; i++ {
		d := int(id[i] - '0')
		if i%2 == 0 {
			sum += d
			continue
		}
		doubled := d * 2
		sum += doubled/10 + doubled%10
	}
	control := (10 - sum%10) % 10
	got := id[8]
	if got == byte('0'+control) || got == cifControlChar[control] {
		return nil
	}
	return fmt.Errorf("control character mismatch")
}

func validateEmail(v any) error {
	s, ok := v.(string)
	if !ok || !reEmail.MatchString(strings.TrimSpace(s)) {
		return fmt.Errorf("%v is not an email address", v)
	}
	return nil
}

func validatePhone(v any) error {
	s, ok := v.(string)
	if !ok {
		return errors.New("phone must be a string")
	}
	digits := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case strings.ContainsRune(" +-().", r):
		default:
			return fmt.Errorf("%q is not a phone number", s)
		}
	}
	if digits < 9 || digits > 15 {
		return fmt.Errorf("%q has %d digits", s, digits)
	}
	return nil
}

func validateCurrency(v any) error {
	s, ok := v.(string)
	if !ok {
		return errors.New("currency must be a string")
	}
	s = strings.TrimSpace(s)
	switch s {
	case "€", "$", "£":
		return nil
	}
	if !reISO.MatchString(s) {
		return fmt.Errorf("%q is not an ISO 4217 code", s)
	}
	return nil
}

func validatePercentage(v any) error {
	n, ok := asNumber(v)
	if !ok || n < 0 || n > 100 {
		return fmt.Errorf("%v is not a percentage", v)
	}
	return nil
}

func validatePositive(v any) error {
	n, ok := asNumber(v)
	if !ok || n <= 0 {
		return fmt.Errorf("%v is not positive", v)
	}
	return nil
}

func validateNonNegative(v any) error {
	n, ok := asNumber(v)
	if !ok || n < 0 {
		return fmt.Errorf("%v is negative", v)
	}
	return nil
}

func validateTime(v any) error {
	s, ok := v.(string)
	if !ok || !reTime.MatchString(strings.TrimSpace(s)) {
		return fmt.Errorf("%v is not a HH:MM time", v)
	}
	return nil
}

// validateIBAN applies the ISO 13616 mod-97 check.
func validateIBAN(v any) error {
	s, ok := v.(string)
	if !ok {
		return errors.New("iban must be a string")
	}
	iban := strings.ToUpper(strings.ReplaceAll(s, " ", ""))
	if len(iban) < 15 || len(iban) > 34 {
		return fmt.Errorf("%q has invalid length", s)
	}
	rearranged := iban[4:] + iban[:4]
	var digits strings.Builder
	for _, r := range rearranged {
		switch {
		case r >= '0' && r <= '9':
			digits.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			fmt.Fprintf(&digits, "%d", r-'A'+10)
		default:
			return fmt.Errorf("%q contains %q", s, r)
		}
	}
	n, ok := new(big.Int).SetString(digits.String(), 10)
	if !ok || new(big.Int).Mod(n, big.NewInt(97)).Int64() != 1 {
		return fmt.Errorf("%q fails checksum", s)
	}
	return nil
}

func parseISODate(v any) (time.Time, bool) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	default:
		return 0, false
	}
}
