package handler

import (
	"context"
	"fmt"

	"jo3qma.com/marketplace/internal/controller"
	"jo3qma.com/marketplace/internal/domain/model"
)

const (
	routeDetail   controller.Route = "detail"
	routeUpload   controller.Route = "upload"
	routeRegister controller.Route = "register"
	routeHospital controller.Route = "hospital"
)

// Categories はカテゴリ一覧を表示します
func (h *CLI) Categories(ctx context.Context) error {
	c := controller.NewHomeController(h.svc.Catalog, h.logger)
	defer c.Dispose()

	err := c.Focus(ctx)
	st := c.State()
	if len(st.Categories) == 0 {
		h.printError(st.ErrorMessage)
		return err
	}
	renderCategories(h.out, st.Categories, st.SelectedCategoryID)
	return nil
}

// Items は条件に合う商品一覧を表示します
func (h *CLI) Items(ctx context.Context, categoryID int64, keyword string) error {
	c := controller.NewHomeController(h.svc.Catalog, h.logger)
	defer c.Dispose()

	c.SetCategory(categoryID)
	c.SetSearchKeyword(keyword)
	if err := c.Focus(ctx); err != nil && c.State().Phase != controller.PhaseReady {
		h.printError(c.State().ErrorMessage)
		return err
	}
	st := c.State()
	if st.ErrorMessage != "" {
		h.printError(st.ErrorMessage)
	}
	renderItems(h.out, st.Items)
	return nil
}

// Item は商品詳細を表示します
func (h *CLI) Item(ctx context.Context, itemID int64) error {
	h.push(routeDetail)
	c := controller.NewDetailController(itemID, h.svc.Catalog, h.svc.Listing, h.svc.Session, h, h, nil, h.logger)
	defer c.Dispose()

	if err := c.Focus(ctx); err != nil {
		h.printError(c.State().ErrorMessage)
		return err
	}
	renderItem(h.out, c.State().Item, c.IsOwner())
	return nil
}

// Delete は確認の上で商品を削除します
// assumeYes が true の場合は確認を省略します
func (h *CLI) Delete(ctx context.Context, itemID int64, assumeYes bool) error {
	h.push(routeDetail)
	c := controller.NewDetailController(itemID, h.svc.Catalog, h.svc.Listing, h.svc.Session, h, h, nil, h.logger)
	defer c.Dispose()

	if err := c.Focus(ctx); err != nil {
		h.printError(c.State().ErrorMessage)
		return err
	}
	if err := c.RequestDelete(); err != nil {
		h.Alert("Delete", model.UserMessage(err, "This item cannot be deleted."))
		return err
	}

	item := c.State().Item
	if !assumeYes && !h.Confirm(fmt.Sprintf("Delete %q?", item.Title)) {
		c.CancelDelete()
		fmt.Fprintln(h.out, "cancelled")
		return nil
	}
	return c.ConfirmDelete(ctx)
}

// UploadInput は出品コマンドの入力です
// 編集の場合、空のフィールドは既存の値のままにします
type UploadInput struct {
	ItemID     int64
	CategoryID int64
	Title      string
	Price      string
	Content    string
	Images     []string
}

// Upload は商品を作成または更新します
func (h *CLI) Upload(ctx context.Context, in UploadInput) error {
	h.push(routeUpload)
	c := controller.NewUploadController(in.ItemID, h.svc.Catalog, h.svc.Listing, h.svc.Session, h, h, h.logger)
	defer c.Dispose()

	if err := c.Focus(ctx); err != nil {
		h.printError(c.State().ErrorMessage)
		return err
	}
	if in.CategoryID > 0 {
		c.SetCategory(in.CategoryID)
	}
	if in.Title != "" {
		c.SetTitle(in.Title)
	}
	if in.Price != "" {
		c.SetPrice(in.Price)
	}
	if in.Content != "" {
		c.SetContent(in.Content)
	}
	c.PickImages(in.Images...)

	id, err := c.Submit(ctx)
	if err != nil {
		return err
	}
	if id > 0 {
		fmt.Fprintf(h.out, "item id: %d\n", id)
	}
	return nil
}

// Login はログインします
func (h *CLI) Login(ctx context.Context, cred model.Credentials) error {
	h.push(controller.RouteLogin)
	c := controller.NewLoginController(h.svc.Account, h.svc.Session, h, h, h.logger)
	defer c.Dispose()

	if err := c.Submit(ctx, cred); err != nil {
		return err
	}
	if cur, ok := h.svc.Session.Current(); ok {
		fmt.Fprintf(h.out, "logged in as %s\n", displayName(cur.UserInfo))
	}
	return nil
}

// Register は会員登録してログインします
func (h *CLI) Register(ctx context.Context, reg model.Registration) error {
	h.push(routeRegister)
	c := controller.NewRegisterController(h.svc.Account, h.svc.Session, h, h, h.logger)
	defer c.Dispose()

	if err := c.Submit(ctx, reg); err != nil {
		return err
	}
	if cur, ok := h.svc.Session.Current(); ok {
		fmt.Fprintf(h.out, "welcome, %s\n", displayName(cur.UserInfo))
	}
	return nil
}

// Logout はログアウトします
func (h *CLI) Logout(ctx context.Context) error {
	h.push(controller.RouteMyPage)
	c := controller.NewMyPageController(h.svc.Account, h.svc.Session, h, h, h.logger)
	defer c.Dispose()

	c.SignOut(ctx)
	fmt.Fprintln(h.out, "logged out")
	return nil
}

// Me は自分の情報と出品一覧を表示します
func (h *CLI) Me(ctx context.Context) error {
	h.push(controller.RouteMyPage)
	c := controller.NewMyPageController(h.svc.Account, h.svc.Session, h, h, h.logger)
	defer c.Dispose()

	if err := c.Focus(ctx); err != nil {
		h.printError(c.State().ErrorMessage)
		return err
	}
	renderProfile(h.out, c.State().Profile)
	return nil
}

// Address は住所を更新し、更新後のプロフィールを表示します
func (h *CLI) Address(ctx context.Context, address string) error {
	h.push(controller.RouteMyPage)
	c := controller.NewMyPageController(h.svc.Account, h.svc.Session, h, h, h.logger)
	defer c.Dispose()

	if err := c.Focus(ctx); err != nil {
		h.printError(c.State().ErrorMessage)
		return err
	}
	if err := c.UpdateAddress(ctx, address); err != nil {
		return err
	}
	renderProfile(h.out, c.State().Profile)
	return nil
}

// Hospitals は周辺の病院・薬局を検索して表示します
func (h *CLI) Hospitals(ctx context.Context, query string, at *model.Coordinates, by model.PlaceSort) error {
	h.push(routeHospital)
	c := controller.NewHospitalSearchController(h.svc.Places, h.logger)
	defer c.Dispose()

	c.SetSort(by)
	if err := c.Focus(ctx, query, at); err != nil {
		h.printError(c.State().ErrorMessage)
		return err
	}
	renderPlaces(h.out, c.Sorted())
	return nil
}

func (h *CLI) printError(msg string) {
	if msg == "" {
		return
	}
	fmt.Fprintf(h.out, "error: %s\n", msg)
}
