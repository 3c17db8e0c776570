// Package directory is the static roster of branches and portal accounts.
// The default roster is compiled in; a YAML file with the same schema can
// replace it at startup.
package directory

import (
	"crypto/subtle"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/bomin1134/gb-ud-portal/internal/common"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

//go:embed roster.yaml
var defaultRoster []byte

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleBranch Role = "branch"
)

type Branch struct {
	ID   int    `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// User is an authenticated account. BranchID is zero for admins.
type User struct {
	ID       string `json:"id"`
	Role     Role   `json:"role"`
	BranchID int    `json:"branchId,omitempty"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanAccess reports whether u may read or write branchID's records.
func (u User) CanAccess(branchID int) bool {
	return u.IsAdmin() || (u.Role == RoleBranch && u.BranchID == branchID)
}

type account struct {
	ID           string `yaml:"id"`
	Password     string `yaml:"password,omitempty"`
	PasswordHash string `yaml:"password_hash,omitempty"`
	Role         Role   `yaml:"role"`
	BranchID     int    `yaml:"branch_id,omitempty"`
}

type roster struct {
	Branches []Branch  `yaml:"branches"`
	Users    []account `yaml:"users"`
}

// Directory answers roster lookups. It is immutable after Load.
type Directory struct {
	branches []Branch
	byBranch map[int]Branch
	accounts map[string]account
}

// Default returns the compiled-in roster.
func Default() (*Directory, error) {
	return Parse(defaultRoster)
}

// Load reads a roster file, or the compiled-in roster when path is empty.
func Load(path string) (*Directory, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("directory: read %s: %w", path, err)
	}
	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("directory: %s: %w", path, err)
	}
	return d, nil
}

// Parse builds a Directory from roster YAML.
func Parse(data []byte) (*Directory, error) {
	var r roster
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse roster: %w", err)
	}

	d := &Directory{
		byBranch: make(map[int]Branch, len(r.Branches)),
		accounts: make(map[string]account, len(r.Users)),
	}
	for _, b := range r.Branches {
		if b.ID <= 0 || strings.TrimSpace(b.Name) == "" {
			return nil, fmt.Errorf("branch %d: id and name are required", b.ID)
		}
		if _, dup := d.byBranch[b.ID]; dup {
			return nil, fmt.Errorf("branch %d: duplicate id", b.ID)
		}
		d.byBranch[b.ID] = b
		d.branches = append(d.branches, b)
	}
	sort.Slice(d.branches, func(i, j int) bool { return d.branches[i].ID < d.branches[j].ID })

	for _, a := range r.Users {
		if err := d.validateAccount(a); err != nil {
			return nil, err
		}
		d.accounts[a.ID] = a
	}
	return d, nil
}

func (d *Directory) validateAccount(a account) error {
	switch {
	case a.ID == "":
		return errors.New("user without id")
	case a.Password == "" && a.PasswordHash == "":
		return fmt.Errorf("user %s: password or password_hash is required", a.ID)
	}
	if _, dup := d.accounts[a.ID]; dup {
		return fmt.Errorf("user %s: duplicate id", a.ID)
	}
	switch a.Role {
	case RoleAdmin:
	case RoleBranch:
		if _, ok := d.byBranch[a.BranchID]; !ok {
			return fmt.Errorf("user %s: unknown branch %d", a.ID, a.BranchID)
		}
	default:
		return fmt.Errorf("user %s: unknown role %q", a.ID, a.Role)
	}
	return nil
}

// Authenticate checks id and password. Any mismatch yields
// common.ErrorUnauthorized without saying which part was wrong.
func (d *Directory) Authenticate(id, password string) (User, error) {
	a, ok := d.accounts[strings.TrimSpace(id)]
	if !ok {
		return User{}, common.ErrorUnauthorized
	}
	if !a.matches(password) {
		return User{}, common.ErrorUnauthorized
	}
	return User{ID: a.ID, Role: a.Role, BranchID: a.BranchID}, nil
}

// Lookup returns the account for id without checking a password.
func (d *Directory) Lookup(id string) (User, bool) {
	a, ok := d.accounts[id]
	if !ok {
		return User{}, false
	}
	return User{ID: a.ID, Role: a.Role, BranchID: a.BranchID}, true
}

func (a account) matches(password string) bool {
	if a.PasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(a.Password), []byte(password)) == 1
}

// Branches lists every branch ordered by id.
func (d *Directory) Branches() []Branch {
	out := make([]Branch, len(d.branches))
	copy(out, d.branches)
	return out
}

// BranchIDs lists every branch id in ascending order.
func (d *Directory) BranchIDs() []int {
	out := make([]int, 0, len(d.branches))
	for _, b := range d.branches {
		out = append(out, b.ID)
	}
	return out
}

func (d *Directory) Branch(id int) (Branch, error) {
	b, ok := d.byBranch[id]
	if !ok {
		return Branch{}, fmt.Errorf("branch %d: %w", id, common.ErrorNotFound)
	}
	return b, nil
}
