package backend

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"jo3qma.com/marketplace/internal/domain/model"
	"jo3qma.com/marketplace/internal/domain/repository"
)

type userClient struct {
	*Client
}

// NewUserClient は新しいUserRepositoryの実装を作成します
func NewUserClient(c *Client) repository.UserRepository {
	return &userClient{Client: c}
}

// Login はユーザー名とパスワードで認証し、識別情報とトークンを返します
func (c *userClient) Login(ctx context.Context, cred model.Credentials) (*model.Session, error) {
	form := newMultipartForm()
	form.field("username", cred.Username)
	form.field("password", cred.Password)
	return c.authenticate(ctx, "/api/user/login", form)
}

// Register は会員登録を行い、ログインと同じ形の識別情報とトークンを返します
func (c *userClient) Register(ctx context.Context, reg model.Registration) (*model.Session, error) {
	form := newMultipartForm()
	form.field("username", reg.Username)
	form.field("password", reg.Password)
	form.field("nickname", reg.Nickname)
	if reg.Location != nil {
		form.field("x", formatCoord(reg.Location.X))
		form.field("y", formatCoord(reg.Location.Y))
	}
	if reg.Addr != "" {
		form.field("addr", reg.Addr)
	}
	return c.authenticate(ctx, "/api/user/register", form)
}

func (c *userClient) authenticate(ctx context.Context, path string, form *multipartForm) (*model.Session, error) {
	req, err := form.request(ctx, http.MethodPost, c.endpoint(path, nil))
	if err != nil {
		return nil, err
	}

	var dto authDTO
	if err := c.call(req, 0, &dto); err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	if dto.UserInfo == nil || dto.UserInfo.ID == 0 || dto.Token == "" {
		// success:true でも識別情報とトークンがそろっていなければ採用しません
		return nil, model.Rejected("the server returned an incomplete session")
	}
	return &model.Session{UserInfo: dto.UserInfo.toModel(), Token: dto.Token}, nil
}

// FetchProfile はトークンの持ち主の情報と出品一覧を取得します
func (c *userClient) FetchProfile(ctx context.Context, token string) (*model.Profile, error) {
	if err := requireToken(token); err != nil {
		return nil, err
	}

	var dto *profileDTO
	if err := c.get(ctx, "/api/user/get_user_by_token", nil, token, &dto); err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if dto == nil {
		return nil, model.Rejected("profile not found")
	}
	return &model.Profile{UserInfo: dto.userDTO.toModel(), Items: itemsToModel(dto.Items)}, nil
}

// UpdateGeo は住所と座標を更新します
// レスポンスには出品一覧が含まれないため、識別情報の差分だけを返します
func (c *userClient) UpdateGeo(ctx context.Context, token string, update model.GeoUpdate) (model.IdentityPatch, error) {
	if err := requireToken(token); err != nil {
		return model.IdentityPatch{}, err
	}

	form := newMultipartForm()
	form.field("x", formatCoord(update.X))
	form.field("y", formatCoord(update.Y))
	if update.Addr != "" {
		form.field("addr", update.Addr)
	}

	req, err := form.request(ctx, http.MethodPost, c.endpoint("/api/user/update_user_geo", nil))
	if err != nil {
		return model.IdentityPatch{}, err
	}
	c.authorize(req, token)

	var dto updateGeoDTO
	if err := c.call(req, 0, &dto); err != nil {
		return model.IdentityPatch{}, fmt.Errorf("update geo: %w", err)
	}

	patch := dto.identityPatchDTO.toModel()
	if dto.UserInfo != nil {
		patch = dto.UserInfo.toModel()
	}
	// サーバーが住所を返さなかった場合は送信した住所を採用します
	if patch.Addr == nil && update.Addr != "" {
		addr := update.Addr
		patch.Addr = &addr
	}
	return patch, nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
