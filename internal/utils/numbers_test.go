package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIndianNumber(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2,13,546.00", "213546.00"},
		{"1,234", "1234"},
		{"  12,34,56,789.125 ", "123456789.125"},
		{"0.5", "0.5"},
		{"-1,000.10", "-1000.10"},
		{"1,2,3", "123"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseIndianNumber(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.StringFixed(got.Exponent()*-1))
		})
	}
}

func TestParseIndianNumberKeepsFraction(t *testing.T) {
	got, err := ParseIndianNumber("2,13,546.00")
	require.NoError(t, err)
	assert.Equal(t, int32(-2), got.Exponent())
}

func TestParseIndianNumberRejects(t *testing.T) {
	for _, in := range []string{"12a3", "", ",", "1.2.3", "1e5", "--1", "₹100", " "} {
		_, err := ParseIndianNumber(in)
		assert.ErrorIs(t, err, ErrInvalidNumberFormat, "input %q", in)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-05")
	require.NoError(t, err)
	assert.Equal(t, 2024, d.Year())
	assert.Equal(t, 5, d.Day())

	_, err = ParseDate("05.03.2024")
	assert.ErrorIs(t, err, ErrInvalidDateFormat)
}

func TestParseInt(t *testing.T) {
	n, err := ParseInt(" 45 ")
	require.NoError(t, err)
	assert.Equal(t, 45, n)

	for _, in := range []string{"4.5", "abc", ""} {
		_, err := ParseInt(in)
		assert.ErrorIs(t, err, ErrInvalidIntegerFormat)
	}
}

func TestParseMonth(t *testing.T) {
	m, err := ParseMonth("2024-11")
	require.NoError(t, err)
	assert.Equal(t, "2024-11", MonthKey(m))

	_, err = ParseMonth("2024-13")
	assert.ErrorIs(t, err, ErrInvalidDateFormat)
}
