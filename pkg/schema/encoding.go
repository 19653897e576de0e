package schema

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Add encodes raw and stores it under name.
func (r IndyCredentialValues) Add(name string, raw interface{}) {
	r[name] = &IndyAttributeValue{
		Raw:     rawString(raw),
		Encoded: EncodeValue(raw),
	}
}

// Get looks an attribute up by its common view name.
func (r IndyCredentialValues) Get(name string) (*IndyAttributeValue, bool) {
	for k, v := range r {
		if AttrCommonView(k) == AttrCommonView(name) {
			return v, true
		}
	}

	return nil, false
}

// EncodeValue keeps 32 bit integers as they are and hashes everything else
// to a decimal string.
func EncodeValue(raw interface{}) string {
	var enc string

	switch v := raw.(type) {
	case nil:
		enc = toEncodedNumber("None")
	case string:
		i, err := strconv.Atoi(v)
		if err == nil && (i <= math.MaxInt32 && i >= math.MinInt32) {
			enc = v
		} else {
			enc = toEncodedNumber(v)
		}
	case bool:
		if v {
			enc = "1"
		} else {
			enc = "0"
		}
	case int32:
		enc = strconv.Itoa(int(v))
	case int64:
		if v <= math.MaxInt32 && v >= math.MinInt32 {
			enc = strconv.Itoa(int(v))
		} else {
			enc = toEncodedNumber(strconv.Itoa(int(v)))
		}
	case int:
		if v <= math.MaxInt32 && v >= math.MinInt32 {
			enc = strconv.Itoa(v)
		} else {
			enc = toEncodedNumber(strconv.Itoa(v))
		}
	case float64:
		if v == 0 {
			enc = toEncodedNumber("0.0")
		} else {
			enc = toEncodedNumber(fmt.Sprintf("%f", v))
		}
	default:
		enc = toEncodedNumber(fmt.Sprintf("%v", v))
	}

	return enc
}

func toEncodedNumber(raw string) string {
	sh := sha256.Sum256([]byte(raw))
	return new(big.Int).SetBytes(sh[:]).String()
}

func rawString(raw interface{}) string {
	if raw == nil {
		return ""
	}

	return fmt.Sprintf("%v", raw)
}

// AttrCommonView normalizes an attribute name for comparison.
func AttrCommonView(attr string) string {
	return strings.ToLower(strings.Replace(attr, " ", "", -1))
}

// Challenge binds a proof to the nonce of the request it answers.
func Challenge(nonce string) string {
	sum := sha256.Sum256([]byte(nonce))
	return hex.EncodeToString(sum[:])
}
