package rules

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

type Rule func(value string) bool

const RULE_NON_EMPTY string = "non_empty"
const RULE_EMAIL string = "email"
const RULE_PHONE string = "phone"
const RULE_AMOUNT string = "amount"
const RULE_OTP string = "otp"

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
var phoneRegex = regexp.MustCompile(`^\+?[0-9]{10,15}$`)
var otpRegex = regexp.MustCompile(`^[0-9]{6}$`)

var registry = map[string]Rule{
	RULE_NON_EMPTY: NonEmpty,
	RULE_EMAIL:     IsValidEmail,
	RULE_PHONE:     IsValidPhone,
	RULE_AMOUNT:    IsValidAmount,
	RULE_OTP:       IsValidOtp,
}

func NonEmpty(value string) bool {
	return len(strings.TrimSpace(value)) > 0
}

func IsValidEmail(value string) bool {
	return emailRegex.MatchString(value)
}

func IsValidPhone(value string) bool {
	return phoneRegex.MatchString(value)
}

// IsValidAmount requires a positive number. The mobile client only checked
// non-empty; the backend rejects zero and negative amounts anyway, so the
// gate moved client-side.
func IsValidAmount(value string) bool {
	amount, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return false
	}
	return amount > 0
}

func IsValidOtp(value string) bool {
	return otpRegex.MatchString(value)
}

func Get(name string) (Rule, error) {
	rule, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown validation rule %s", name)
	}
	return rule, nil
}

func ValidateRuleName(name string) error {
	_, err := Get(name)
	return err
}
