package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"sampahku/internal/models"
	"sampahku/internal/repository"
	"sampahku/internal/store"
)

type AccountService struct {
	Deps
	hasher   PasswordHasher
	validate *validator.Validate
}

func NewAccountService(d Deps, hasher PasswordHasher) *AccountService {
	if hasher == nil {
		hasher = NewBcryptHasher()
	}
	return &AccountService{Deps: d.withDefaults(), hasher: hasher, validate: newValidator()}
}

// Authenticate checks RT or admin credentials and records the login time.
// Only a successful sign-in touches lastLogin.
func (s *AccountService) Authenticate(ctx context.Context, role models.Role, username, password string) (*Principal, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	switch role {
	case models.RoleAdmin:
		return s.authenticateAdmin(ctx, username, password)
	case models.RoleRT:
		return s.authenticateRT(ctx, username, password)
	}
	return nil, ErrInvalidCredentials
}

func (s *AccountService) authenticateAdmin(ctx context.Context, username, password string) (*Principal, error) {
	admin, err := s.Repos.Accounts.GetAdmin(ctx)
	if err != nil {
		return nil, persistence("get admin", err)
	}
	if admin == nil || subtle.ConstantTimeCompare([]byte(admin.Username), []byte(username)) != 1 {
		return nil, ErrInvalidCredentials
	}

	fields, ok := s.checkPassword(admin.PasswordHash, admin.Password, password)
	if !ok {
		return nil, ErrInvalidCredentials
	}
	now := s.Now()
	fields["lastLogin"] = now
	if err := s.Repos.Accounts.UpdateAdmin(ctx, fields); err != nil {
		return nil, persistence("update admin last login", err)
	}

	return &Principal{ID: models.AdminDocumentID, Role: models.RoleAdmin, Name: admin.Username}, nil
}

func (s *AccountService) authenticateRT(ctx context.Context, username, password string) (*Principal, error) {
	accounts, err := s.Repos.Accounts.FindRTByUsername(ctx, username)
	if err != nil {
		return nil, persistence("find rt account", err)
	}
	if len(accounts) == 0 {
		return nil, ErrInvalidCredentials
	}
	if len(accounts) > 1 {
		s.Logger.Warn("Username shared by several RT accounts", zap.String("username", username), zap.Int("count", len(accounts)))
	}

	for _, acc := range accounts {
		fields, ok := s.checkPassword(acc.PasswordHash, acc.Password, password)
		if !ok {
			continue
		}
		if acc.IsDeactivated {
			return nil, ErrAccountDeactivated
		}
		now := s.Now()
		fields["lastLogin"] = now
		if err := s.Repos.Accounts.UpdateRT(ctx, acc.ID, fields); err != nil {
			return nil, persistence("update rt last login", err)
		}
		name := acc.Name
		if name == "" {
			name = acc.Username
		}
		return &Principal{ID: acc.ID, Role: models.RoleRT, Name: name, RT: acc.RT, RW: acc.RW}, nil
	}
	return nil, ErrInvalidCredentials
}

// checkPassword verifies a password against the stored hash. Accounts still
// holding a legacy plaintext password are verified once and upgraded; the
// returned fields carry the upgrade.
func (s *AccountService) checkPassword(hash, legacy, password string) (repository.Fields, bool) {
	fields := repository.Fields{}
	if hash != "" {
		return fields, s.hasher.Verify(hash, password)
	}
	if legacy == "" || subtle.ConstantTimeCompare([]byte(legacy), []byte(password)) != 1 {
		return fields, false
	}

	upgraded, err := s.hasher.Hash(password)
	if err != nil {
		s.Logger.Warn("Failed to hash legacy password", zap.Error(err))
		return fields, true
	}
	fields["passwordHash"] = upgraded
	fields["password"] = ""
	s.Logger.Info("Upgraded legacy plaintext password")
	return fields, true
}

// RTAccountInput creates an RT account
type RTAccountInput struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Email    string `json:"email" validate:"omitempty,email"`
	RT       string `json:"rt" validate:"required,numeric,max=3"`
	RW       string `json:"rw" validate:"required,numeric,max=3"`
}

func (s *AccountService) CreateRTAccount(ctx context.Context, in RTAccountInput) (*models.RTAccount, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.RT = strings.TrimSpace(in.RT)
	in.RW = strings.TrimSpace(in.RW)
	if err := s.validate.Struct(in); err != nil {
		return nil, accountValidationError(err)
	}
	if err := checkPassword(in.Password); err != nil {
		return nil, err
	}
	if err := s.ensureUsernameFree(ctx, in.Username, ""); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	acc := &models.RTAccount{
		Username:     in.Username,
		Name:         strings.TrimSpace(in.Name),
		Email:        in.Email,
		PasswordHash: hash,
		RT:           in.RT,
		RW:           in.RW,
		CreatedAt:    s.Now(),
	}
	if err := s.Repos.Accounts.CreateRT(ctx, acc); err != nil {
		return nil, persistence("create rt account", err)
	}
	s.Logger.Info("RT account created", zap.String("account_id", acc.ID), zap.String("username", acc.Username))
	out := acc.Public()
	return &out, nil
}

// RTAccountUpdate edits an RT account. Nil fields are left unchanged.
type RTAccountUpdate struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
	Name     *string `json:"name"`
	Email    *string `json:"email"`
}

func (s *AccountService) UpdateRTAccount(ctx context.Context, id string, upd RTAccountUpdate) (*models.RTAccount, error) {
	acc, err := s.getRT(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := repository.Fields{}
	if upd.Username != nil {
		username := strings.TrimSpace(*upd.Username)
		if err := s.validate.Var(username, "required,min=3,max=50"); err != nil {
			return nil, invalid("username", ErrInvalidAccount, "Username harus 3 sampai 50 karakter")
		}
		if username != acc.Username {
			if err := s.ensureUsernameFree(ctx, username, id); err != nil {
				return nil, err
			}
		}
		acc.Username = username
		fields["username"] = username
	}
	if upd.Password != nil {
		if err := checkPassword(*upd.Password); err != nil {
			return nil, err
		}
		hash, err := s.hasher.Hash(*upd.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		acc.PasswordHash = hash
		fields["passwordHash"] = hash
		fields["password"] = ""
	}
	if upd.Name != nil {
		acc.Name = strings.TrimSpace(*upd.Name)
		fields["name"] = acc.Name
	}
	if upd.Email != nil {
		email := strings.TrimSpace(*upd.Email)
		if err := s.validate.Var(email, "omitempty,email"); err != nil {
			return nil, invalid("email", ErrInvalidAccount, "Format email tidak valid")
		}
		acc.Email = email
		fields["email"] = email
	}

	if len(fields) > 0 {
		if err := s.Repos.Accounts.UpdateRT(ctx, id, fields); err != nil {
			return nil, persistence("update rt account", err)
		}
	}
	out := acc.Public()
	return &out, nil
}

// SetRTAccountDeactivated blocks or unblocks sign-in without deleting the account
func (s *AccountService) SetRTAccountDeactivated(ctx context.Context, id string, deactivated bool) (*models.RTAccount, error) {
	acc, err := s.getRT(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.Repos.Accounts.UpdateRT(ctx, id, repository.Fields{"isDeactivated": deactivated}); err != nil {
		return nil, persistence("update rt account", err)
	}
	acc.IsDeactivated = deactivated
	out := acc.Public()
	return &out, nil
}

func (s *AccountService) DeleteRTAccount(ctx context.Context, id string) error {
	if _, err := s.getRT(ctx, id); err != nil {
		return err
	}
	if err := s.Repos.Accounts.DeleteRT(ctx, id); err != nil {
		return persistence("delete rt account", err)
	}
	return nil
}

// ListRTAccounts returns all RT accounts without credentials, ordered by RW then RT
func (s *AccountService) ListRTAccounts(ctx context.Context) ([]models.RTAccount, error) {
	accounts, err := s.Repos.Accounts.ListRT(ctx)
	if err != nil {
		return nil, persistence("list rt accounts", err)
	}
	out := make([]models.RTAccount, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, a.Public())
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].RW != out[j].RW {
			return out[i].RW < out[j].RW
		}
		return out[i].RT < out[j].RT
	})
	return out, nil
}

func (s *AccountService) GetRTAccount(ctx context.Context, id string) (*models.RTAccount, error) {
	acc, err := s.getRT(ctx, id)
	if err != nil {
		return nil, err
	}
	out := acc.Public()
	return &out, nil
}

func (s *AccountService) getRT(ctx context.Context, id string) (*models.RTAccount, error) {
	acc, err := s.Repos.Accounts.GetRT(ctx, id)
	if err != nil {
		return nil, persistence("get rt account", err)
	}
	if acc == nil {
		return nil, ErrAccountNotFound
	}
	return acc, nil
}

func (s *AccountService) ensureUsernameFree(ctx context.Context, username, selfID string) error {
	existing, err := s.Repos.Accounts.FindRTByUsername(ctx, username)
	if err != nil {
		return persistence("find rt account", err)
	}
	for _, a := range existing {
		if a.ID != selfID {
			return invalid("username", ErrDuplicateUsername, "Username sudah digunakan")
		}
	}
	return nil
}

// UpdateAdminCredentials changes the admin username and/or password
func (s *AccountService) UpdateAdminCredentials(ctx context.Context, username, password string) error {
	admin, err := s.Repos.Accounts.GetAdmin(ctx)
	if err != nil {
		return persistence("get admin", err)
	}
	if admin == nil {
		return ErrAccountNotFound
	}

	fields := repository.Fields{}
	if username = strings.TrimSpace(username); username != "" {
		if err := s.validate.Var(username, "min=3,max=50"); err != nil {
			return invalid("username", ErrInvalidAccount, "Username harus 3 sampai 50 karakter")
		}
		fields["username"] = username
	}
	if password != "" {
		if err := checkPassword(password); err != nil {
			return err
		}
		hash, err := s.hasher.Hash(password)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		fields["passwordHash"] = hash
		fields["password"] = ""
	}
	if len(fields) == 0 {
		return invalid("", ErrRequiredFields, "Isi username atau kata sandi baru")
	}
	if err := s.Repos.Accounts.UpdateAdmin(ctx, fields); err != nil {
		return persistence("update admin", err)
	}
	return nil
}

// ProvisionAdmin creates the singleton admin account. It fails if one exists.
func (s *AccountService) ProvisionAdmin(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if err := s.validate.Var(username, "required,min=3,max=50"); err != nil {
		return invalid("username", ErrInvalidAccount, "Username harus 3 sampai 50 karakter")
	}
	if err := checkPassword(password); err != nil {
		return err
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	err = s.Repos.Accounts.CreateAdmin(ctx, &models.AdminAccount{Username: username, PasswordHash: hash})
	if errors.Is(err, store.ErrAlreadyExists) {
		return errors.New("admin account already provisioned")
	}
	if err != nil {
		return persistence("create admin", err)
	}
	return nil
}

func accountValidationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		switch verrs[0].Field() {
		case "Username":
			return invalid("username", ErrInvalidAccount, "Username harus 3 sampai 50 karakter")
		case "Email":
			return invalid("email", ErrInvalidAccount, "Format email tidak valid")
		case "RT", "RW":
			return invalid(strings.ToLower(verrs[0].Field()), ErrInvalidAccount, "RT dan RW wajib berupa angka")
		}
	}
	return invalid("", ErrInvalidAccount, "Data akun tidak valid")
}
