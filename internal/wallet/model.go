package wallet

import "time"

// Wallet is the derived blockchain account of a user. It is created once and
// never mutated.
type Wallet struct {
	ID        string
	OwnerID   string
	PathIndex int64
	Address   string
	CreatedAt time.Time
}

// View is the client-facing representation of a wallet.
type View struct {
	WalletAddress string `json:"walletAddress"`
	PathIndex     int64  `json:"pathIndex"`
}

// View returns the representation sent to the owner.
func (w Wallet) View() View {
	return View{WalletAddress: w.Address, PathIndex: w.PathIndex}
}
