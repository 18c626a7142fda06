package cli

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"pix_checkout/internal/domain/entities"
	"pix_checkout/internal/poller"
)

func printCharge(w io.Writer, charge entities.PixCharge) {
	fmt.Fprintf(w, "Payment:   %s\n", charge.ID)
	fmt.Fprintf(w, "Status:    %s\n", charge.Status)
	fmt.Fprintf(w, "Amount:    R$ %.2f\n", charge.TransactionAmount)
	if charge.DateOfExpiration != nil {
		fmt.Fprintf(w, "Expires:   %s\n", charge.DateOfExpiration.Format(time.RFC3339))
	}
	if charge.TicketURL != "" {
		fmt.Fprintf(w, "Ticket:    %s\n", charge.TicketURL)
	}
	if charge.QRCode != "" {
		fmt.Fprintf(w, "\nPIX copia e cola:\n%s\n", charge.QRCode)
	}
}

// writeQRImage stores the provider's PNG rendering of the PIX code at path.
func writeQRImage(w io.Writer, charge entities.PixCharge, path string) error {
	if path == "" {
		return nil
	}
	if charge.QRCodeBase64 == "" {
		fmt.Fprintln(w, "No QR image returned by the provider.")
		return nil
	}
	png, err := base64.StdEncoding.DecodeString(charge.QRCodeBase64)
	if err != nil {
		return fmt.Errorf("decode qr image: %w", err)
	}
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return fmt.Errorf("write qr image: %w", err)
	}
	fmt.Fprintf(w, "QR image written to %s\n", path)
	return nil
}

// progressPrinter prints poll progress. It implements poller.Observer.
type progressPrinter struct {
	mu sync.Mutex
	w  io.Writer
}

func (p *progressPrinter) CheckCompleted(_ string, attempt int, status entities.PaymentStatus, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		fmt.Fprintf(p.w, "check #%d: error: %v\n", attempt, err)
		return
	}
	fmt.Fprintf(p.w, "check #%d: %s\n", attempt, status)
}

func (p *progressPrinter) CheckSkipped(_ string, attempt int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "check #%d: skipped, previous check still running\n", attempt)
}

func (p *progressPrinter) SessionFinished(_ string, outcome poller.Outcome, elapsed time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "finished: %s after %s\n", outcome, elapsed.Round(time.Millisecond))
}
