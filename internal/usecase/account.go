package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"jo3qma.com/marketplace/internal/domain/model"
	"jo3qma.com/marketplace/internal/domain/repository"
)

// AccountUsecase はログイン・会員登録・マイページの操作を担当します
type AccountUsecase struct {
	users    repository.UserRepository
	geocoder repository.GeocodeRepository
	logger   *slog.Logger
}

// NewAccountUsecase は新しいAccountUsecaseインスタンスを作成します
// geocoder が nil の場合、住所の変換を伴う操作は検証エラーになります
func NewAccountUsecase(users repository.UserRepository, geocoder repository.GeocodeRepository, logger *slog.Logger) *AccountUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountUsecase{
		users:    users,
		geocoder: geocoder,
		logger:   logger,
	}
}

// Login は入力を検証してからログインします
func (u *AccountUsecase) Login(ctx context.Context, cred model.Credentials) (*model.Session, error) {
	cred.Username = strings.TrimSpace(cred.Username)
	if cred.Username == "" || cred.Password == "" {
		return nil, model.Invalid("Please enter your username and password.")
	}
	return u.users.Login(ctx, cred)
}

// Register は入力を検証してから会員登録します
// 現在地が与えられていれば住所に変換して一緒に送信します。変換に失敗しても登録は続けます
func (u *AccountUsecase) Register(ctx context.Context, reg model.Registration) (*model.Session, error) {
	reg.Username = strings.TrimSpace(reg.Username)
	reg.Nickname = strings.TrimSpace(reg.Nickname)
	switch {
	case reg.Username == "" || reg.Password == "":
		return nil, model.Invalid("Please enter your username and password.")
	case reg.Password != reg.PasswordConfirm:
		return nil, model.Invalid("Passwords do not match.")
	case reg.Nickname == "":
		return nil, model.Invalid("Please enter a nickname.")
	}

	if reg.Location != nil && strings.TrimSpace(reg.Addr) == "" && u.geocoder != nil {
		point, err := u.geocoder.ReverseGeocode(ctx, *reg.Location)
		switch {
		case err != nil:
			u.logger.Warn("failed to resolve registration address", "error", err)
		case point.RoadAddressName != "":
			reg.Addr = point.RoadAddressName
		default:
			reg.Addr = point.AddressName
		}
	}
	return u.users.Register(ctx, reg)
}

// Profile はトークンの持ち主の情報と出品一覧を取得します
// トークンがない場合は通信せずに未認証エラーを返します
func (u *AccountUsecase) Profile(ctx context.Context, token string) (*model.Profile, error) {
	if strings.TrimSpace(token) == "" {
		return nil, model.Unauthenticated("")
	}
	return u.users.FetchProfile(ctx, token)
}

// UpdateAddress は住所を座標に変換してからサーバーに保存し、更新された識別情報を返します
func (u *AccountUsecase) UpdateAddress(ctx context.Context, token, address string) (model.IdentityPatch, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return model.IdentityPatch{}, model.Invalid("Please enter an address.")
	}
	if strings.TrimSpace(token) == "" {
		return model.IdentityPatch{}, model.Unauthenticated("")
	}
	if u.geocoder == nil {
		return model.IdentityPatch{}, model.Invalid("geocoding is not configured")
	}

	point, err := u.geocoder.Geocode(ctx, address)
	if err != nil {
		if errors.Is(err, model.ErrNoGeocodeResult) {
			u.logger.Info("address not found", "address", address)
		}
		return model.IdentityPatch{}, err
	}

	return u.users.UpdateGeo(ctx, token, model.GeoUpdate{
		Addr:        address,
		Coordinates: point.Coordinates,
	})
}
