package wallet

import (
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

// EtherDecimals - количество знаков после запятой у ETH.
const EtherDecimals = 18

var weiPerEther = new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(EtherDecimals))

// ParseEther переводит десятичную строку ("0.01") в wei.
// Дробная часть длиннее 18 знаков считается ошибкой, а не округляется.
func ParseEther(amount string) (*uint256.Int, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return nil, fmt.Errorf("сумма не указана")
	}
	if strings.HasPrefix(amount, "-") || strings.HasPrefix(amount, "+") {
		return nil, fmt.Errorf("некорректная сумма: %s", amount)
	}

	whole, frac, _ := strings.Cut(amount, ".")
	if whole == "" {
		whole = "0"
	}
	if len(frac) > EtherDecimals {
		return nil, fmt.Errorf("слишком много знаков после запятой: %s", amount)
	}
	if !isDigits(whole) || (frac != "" && !isDigits(frac)) {
		return nil, fmt.Errorf("некорректная сумма: %s", amount)
	}

	digits := strings.TrimLeft(whole+frac+strings.Repeat("0", EtherDecimals-len(frac)), "0")
	if digits == "" {
		return uint256.NewInt(0), nil
	}
	wei, err := uint256.FromDecimal(digits)
	if err != nil {
		return nil, fmt.Errorf("некорректная сумма %s: %w", amount, err)
	}
	return wei, nil
}

// FormatEther переводит wei в десятичную строку ETH без лишних нулей.
func FormatEther(wei *uint256.Int) string {
	if wei == nil {
		return "0"
	}
	whole, rem := new(uint256.Int).DivMod(wei, weiPerEther, new(uint256.Int))
	if rem.IsZero() {
		return whole.Dec()
	}
	frac := rem.Dec()
	frac = strings.Repeat("0", EtherDecimals-len(frac)) + frac
	return whole.Dec() + "." + strings.TrimRight(frac, "0")
}

// ParseQuantity разбирает hex-число из JSON-RPC ("0x1bc16d674ec80000").
func ParseQuantity(hex string) (*uint256.Int, error) {
	digits := strings.TrimPrefix(strings.TrimPrefix(hex, "0x"), "0X")
	if digits == "" {
		return nil, fmt.Errorf("пустое hex-значение")
	}
	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		return uint256.NewInt(0), nil
	}
	return uint256.FromHex("0x" + digits)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
