package lobby

import (
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// JoinCodePNG renders the share QR for a join code as a PNG. When baseURL
// is set the QR encodes baseURL/join/CODE so phones open straight into the
// lobby; otherwise it encodes the bare code.
func JoinCodePNG(baseURL, code string, size int) ([]byte, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	payload := code
	if baseURL != "" {
		payload = fmt.Sprintf("%s/join/%s", strings.TrimRight(baseURL, "/"), code)
	}
	png, err := qrcode.Encode(payload, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode join QR: %w", err)
	}
	return png, nil
}
