package rules

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNonEmpty(t *testing.T) {
	require.True(t, NonEmpty("alice"))
	require.False(t, NonEmpty(""))
	require.False(t, NonEmpty("   "))
}

func TestIsValidEmail(t *testing.T) {
	require.True(t, IsValidEmail("alice@example.com"))
	require.True(t, IsValidEmail("a.b+c@mail.co"))
	require.False(t, IsValidEmail("alice"))
	require.False(t, IsValidEmail("alice@com"))
	require.False(t, IsValidEmail("a b@example.com"))
}

func TestIsValidPhone(t *testing.T) {
	require.True(t, IsValidPhone("+923001234567"))
	require.True(t, IsValidPhone("03001234567"))
	require.False(t, IsValidPhone("12345"))
	require.False(t, IsValidPhone("+1-300-123-4567"))
	require.False(t, IsValidPhone("1234567890123456"))
}

func TestIsValidAmount(t *testing.T) {
	require.True(t, IsValidAmount("100"))
	require.True(t, IsValidAmount("0.01"))
	require.False(t, IsValidAmount("0"))
	require.False(t, IsValidAmount("-5"))
	require.False(t, IsValidAmount("ten"))
	require.False(t, IsValidAmount(""))
}

func TestIsValidOtp(t *testing.T) {
	require.True(t, IsValidOtp("000000"))
	require.True(t, IsValidOtp("123456"))
	require.False(t, IsValidOtp("12345"))
	require.False(t, IsValidOtp("1234567"))
	require.False(t, IsValidOtp("12345a"))
}

func TestGet(t *testing.T) {
	for _, name := range []string{RULE_NON_EMPTY, RULE_EMAIL, RULE_PHONE, RULE_AMOUNT, RULE_OTP} {
		rule, err := Get(name)
		require.NoError(t, err)
		require.NotNil(t, rule)
	}
	_, err := Get("no_such_rule")
	require.Error(t, err)
}
