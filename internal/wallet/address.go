package wallet

import (
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Keccak256Hex возвращает keccak-256 хеш в виде 0x-строки.
func Keccak256Hex(data []byte) string {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return "0x" + hex.EncodeToString(h.Sum(nil))
}

// ChecksumAddress возвращает адрес в формате EIP-55.
// Ожидает 0x и 40 hex-символов.
func ChecksumAddress(addr string) string {
	lower := strings.ToLower(strings.TrimPrefix(strings.TrimPrefix(addr, "0x"), "0X"))
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(lower))
	sum := h.Sum(nil)

	out := make([]byte, len(lower))
	for i := 0; i < len(lower); i++ {
		c := lower[i]
		nibble := sum[i/2]
		if i%2 == 0 {
			nibble >>= 4
		}
		if c >= 'a' && c <= 'f' && nibble&0x0f >= 8 {
			c -= 'a' - 'A'
		}
		out[i] = c
	}
	return "0x" + string(out)
}

// NormalizeAddress проверяет адрес и возвращает его checksum-форму.
// Адрес в смешанном регистре должен совпадать с собственной checksum-формой.
func NormalizeAddress(addr string) (string, error) {
	addr = strings.TrimSpace(addr)
	if len(addr) != 42 || !(strings.HasPrefix(addr, "0x") || strings.HasPrefix(addr, "0X")) {
		return "", fmt.Errorf("адрес должен начинаться с 0x и содержать 40 hex-символов")
	}
	body := addr[2:]
	if _, err := hex.DecodeString(body); err != nil {
		return "", fmt.Errorf("адрес содержит недопустимые символы")
	}

	checksummed := ChecksumAddress(addr)
	if body != strings.ToLower(body) && body != strings.ToUpper(body) && checksummed[2:] != body {
		return "", fmt.Errorf("неверная контрольная сумма адреса")
	}
	return checksummed, nil
}
