package layout

import (
	"fmt"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PasswordHandler deals with password-protected PDFs through pdfcpu.
type PasswordHandler struct {
	password string
}

// NewPasswordHandler returns a handler that tries password as both the
// user and the owner password.
func NewPasswordHandler(password string) *PasswordHandler {
	return &PasswordHandler{password: password}
}

// IsEncrypted reports whether pdfcpu refuses the file for lack of a password.
func (h *PasswordHandler) IsEncrypted(filename string) (bool, error) {
	_, err := api.PageCountFile(filename)
	if err == nil {
		return false, nil
	}
	if IsPasswordError(err) {
		return true, nil
	}
	return false, fmt.Errorf("failed to check PDF encryption status: %w", err)
}

// Decrypt writes a decrypted copy of filename to a temporary file and
// returns its path. Unencrypted input is returned unchanged. The caller
// removes the temporary file.
func (h *PasswordHandler) Decrypt(filename string) (string, error) {
	encrypted, err := h.IsEncrypted(filename)
	if err != nil {
		return "", err
	}
	if !encrypted {
		return filename, nil
	}

	tmp, err := os.CreateTemp("", "decrypted-*.pdf")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	_ = tmp.Close()

	if err := api.DecryptFile(filename, tmp.Name(), h.configuration()); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to decrypt PDF: %w", err)
	}
	return tmp.Name(), nil
}

// PageCount returns the page count as pdfcpu sees it, decrypting with the
// configured password when needed.
func (h *PasswordHandler) PageCount(filename string) (int, error) {
	f, err := os.Open(filename) //nolint:gosec // G304: path supplied by the caller
	if err != nil {
		return 0, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer func() { _ = f.Close() }()

	n, err := api.PageCount(f, h.configuration())
	if err != nil {
		return 0, fmt.Errorf("failed to count pages: %w", err)
	}
	return n, nil
}

func (h *PasswordHandler) configuration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	if h.password != "" {
		conf.UserPW = h.password
		conf.OwnerPW = h.password
	}
	return conf
}

// IsPasswordError reports whether err looks like a missing or wrong password.
func IsPasswordError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "password") ||
		strings.Contains(msg, "encrypted") ||
		strings.Contains(msg, "decrypt")
}
