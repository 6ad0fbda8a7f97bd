package auth

import (
	"bytes"
	"encoding/base64"
	"image/png"

	"github.com/pquerna/otp/totp"
)

// TOTPProvisioning holds everything a client needs to enrol an authenticator app.
type TOTPProvisioning struct {
	Secret     string
	OtpauthURL string
	// QRDataURL is a data:image/png;base64 URL of the provisioning QR code.
	QRDataURL string
}

type TOTPService struct {
	issuer string
}

func NewTOTPService(issuer string) *TOTPService {
	return &TOTPService{issuer: issuer}
}

func (s *TOTPService) GenerateSecret(accountEmail string) (*TOTPProvisioning, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.issuer,
		AccountName: accountEmail,
	})
	if err != nil {
		return nil, err
	}

	img, err := key.Image(200, 200)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}

	return &TOTPProvisioning{
		Secret:     key.Secret(),
		OtpauthURL: key.URL(),
		QRDataURL:  "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
	}, nil
}

func (s *TOTPService) VerifyCode(secret, code string) bool {
	return totp.Validate(code, secret)
}
