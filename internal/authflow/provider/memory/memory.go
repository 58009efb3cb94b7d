// Package memory is the in-process credential provider used by tests and
// provider-free local runs.
package memory

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"

	"golang.org/x/crypto/bcrypt"

	id "campusgate/pkg/domain"
	"campusgate/pkg/platform/sentinel"
)

type account struct {
	principalID  id.PrincipalID
	passwordHash []byte
	pendingCode  string
}

// Provider keeps accounts, codes, and bcrypt password hashes in memory.
type Provider struct {
	mu       sync.Mutex
	accounts map[string]*account

	// FixedCode, when set, replaces random code generation so tests can
	// drive the flow deterministically.
	FixedCode string
}

func New() *Provider {
	return &Provider{accounts: make(map[string]*account)}
}

func (p *Provider) SendVerificationCode(_ context.Context, email string, allowCreate bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	acct, ok := p.accounts[email]
	if !ok {
		if !allowCreate {
			return sentinel.ErrNotFound
		}
		acct = &account{principalID: id.NewPrincipalID()}
		p.accounts[email] = acct
	}
	acct.pendingCode = p.nextCode()
	return nil
}

func (p *Provider) VerifyCode(_ context.Context, email, code string) (id.PrincipalID, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	acct, ok := p.accounts[email]
	if !ok {
		return id.PrincipalID{}, sentinel.ErrNotFound
	}
	if acct.pendingCode == "" || acct.pendingCode != code {
		return id.PrincipalID{}, sentinel.ErrInvalidState
	}
	acct.pendingCode = ""
	return acct.principalID, nil
}

func (p *Provider) UpdateCredential(_ context.Context, pid id.PrincipalID, password string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, acct := range p.accounts {
		if acct.principalID == pid {
			hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}
			acct.passwordHash = hash
			return nil
		}
	}
	return sentinel.ErrNotFound
}

func (p *Provider) SignInWithPassword(_ context.Context, email, password string) (id.PrincipalID, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	acct, ok := p.accounts[email]
	if !ok || acct.passwordHash == nil {
		return id.PrincipalID{}, sentinel.ErrNotFound
	}
	if err := bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(password)); err != nil {
		return id.PrincipalID{}, sentinel.ErrInvalidState
	}
	return acct.principalID, nil
}

// PendingCode exposes the last dispatched code for an email. Test helper.
func (p *Provider) PendingCode(email string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if acct, ok := p.accounts[email]; ok {
		return acct.pendingCode
	}
	return ""
}

func (p *Provider) nextCode() string {
	if p.FixedCode != "" {
		return p.FixedCode
	}
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "000000"
	}
	return fmt.Sprintf("%06d", n.Int64())
}
