package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"jo3qma.com/marketplace/internal/config"
	"jo3qma.com/marketplace/internal/domain/model"
	"jo3qma.com/marketplace/internal/handler"
	"jo3qma.com/marketplace/internal/infrastructure/backend"
	"jo3qma.com/marketplace/internal/infrastructure/httpx"
	"jo3qma.com/marketplace/internal/infrastructure/kakao"
	"jo3qma.com/marketplace/internal/infrastructure/storage"
	"jo3qma.com/marketplace/internal/session"
	"jo3qma.com/marketplace/internal/usecase"
)

const usage = `usage: market <command> [flags] [args]

commands:
  categories                          list categories
  items [-category N] [-q keyword]    list items
  item <id>                           show an item
  delete [-yes] <id>                  delete your item
  upload [-id N] [-category N] -title T -price P -content C [-image path]...
  login -username U -password P
  register -username U -password P -confirm P -nickname N [-x lon -y lat]
  logout
  me                                  show your profile and listings
  address <text>                      update your address
  hospitals [-x lon -y lat] [-sort distance|score] <query>
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) < 1 || args[0] == "-h" || args[0] == "help" {
		fmt.Fprint(stderr, usage)
		return 2
	}

	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err := config.Load(logger)
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		return 1
	}
	level.Set(cfg.LogLevel)

	// Ctrl+C などで実行中のリクエストを中断します
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 依存関係の組み立て（依存性注入）
	kv, err := storage.Open(ctx, cfg.StoragePath)
	if err != nil {
		logger.Error("Failed to open device storage", "error", err, "path", cfg.StoragePath)
		return 1
	}
	defer kv.Close()

	sess := session.NewStore(kv, session.WithLogger(logger))
	sess.Restore(ctx)

	fetcher := httpx.NewFetcher(&http.Client{}, cfg.RequestTimeout, logger)
	opts := []backend.Option{backend.WithUploadTimeout(cfg.UploadTimeout), backend.WithLogger(logger)}
	if cfg.BearerPrefix {
		opts = append(opts, backend.WithBearerPrefix())
	}
	api := backend.NewClient(cfg.APIBaseURL, fetcher, opts...)
	items := backend.NewItemClient(api)
	geocoder := kakao.NewGeocoder(fetcher, cfg.KakaoBaseURL, cfg.KakaoAPIKey)

	cli := handler.NewCLI(handler.Services{
		Catalog: usecase.NewCatalogUsecase(backend.NewCategoryClient(api), items),
		Listing: usecase.NewListingUsecase(items),
		Account: usecase.NewAccountUsecase(backend.NewUserClient(api), geocoder, logger),
		Places:  usecase.NewPlaceUsecase(backend.NewPlaceClient(api)),
		Session: sess,
	}, stdin, stdout, logger)

	if err := dispatch(ctx, cli, args[0], args[1:], stderr); err != nil {
		var ue usageError
		switch {
		case errors.As(err, &ue):
			fmt.Fprintf(stderr, "%s\n\n%s", ue.msg, usage)
			return 2
		case errors.Is(err, flag.ErrHelp):
			return 2
		case errors.Is(err, context.Canceled):
			logger.Info("interrupted")
			return 130
		}
		logger.Debug("command failed", "command", args[0], "error", err)
		return 1
	}
	return 0
}

type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func dispatch(ctx context.Context, cli *handler.CLI, cmd string, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)

	switch cmd {
	case "categories":
		if err := fs.Parse(args); err != nil {
			return err
		}
		return cli.Categories(ctx)

	case "items":
		category := fs.Int64("category", model.AllCategoryID, "category id (0 = All)")
		keyword := fs.String("q", "", "search keyword")
		if err := fs.Parse(args); err != nil {
			return err
		}
		return cli.Items(ctx, *category, *keyword)

	case "item":
		if err := fs.Parse(args); err != nil {
			return err
		}
		id, err := itemIDArg(fs)
		if err != nil {
			return err
		}
		return cli.Item(ctx, id)

	case "delete":
		yes := fs.Bool("yes", false, "skip the confirmation prompt")
		if err := fs.Parse(args); err != nil {
			return err
		}
		id, err := itemIDArg(fs)
		if err != nil {
			return err
		}
		return cli.Delete(ctx, id, *yes)

	case "upload":
		var in handler.UploadInput
		var images stringList
		fs.Int64Var(&in.ItemID, "id", 0, "item id to edit (0 = new item)")
		fs.Int64Var(&in.CategoryID, "category", 0, "category id")
		fs.StringVar(&in.Title, "title", "", "title")
		fs.StringVar(&in.Price, "price", "", "price")
		fs.StringVar(&in.Content, "content", "", "description")
		fs.Var(&images, "image", "image file path or URL (repeatable, up to 5)")
		if err := fs.Parse(args); err != nil {
			return err
		}
		in.Images = images
		return cli.Upload(ctx, in)

	case "login":
		var cred model.Credentials
		fs.StringVar(&cred.Username, "username", "", "username")
		fs.StringVar(&cred.Password, "password", "", "password")
		if err := fs.Parse(args); err != nil {
			return err
		}
		return cli.Login(ctx, cred)

	case "register":
		var reg model.Registration
		fs.StringVar(&reg.Username, "username", "", "username")
		fs.StringVar(&reg.Password, "password", "", "password")
		fs.StringVar(&reg.PasswordConfirm, "confirm", "", "password confirmation")
		fs.StringVar(&reg.Nickname, "nickname", "", "nickname")
		loc := coordFlags(fs)
		if err := fs.Parse(args); err != nil {
			return err
		}
		at, err := loc()
		if err != nil {
			return err
		}
		reg.Location = at
		return cli.Register(ctx, reg)

	case "logout":
		if err := fs.Parse(args); err != nil {
			return err
		}
		return cli.Logout(ctx)

	case "me":
		if err := fs.Parse(args); err != nil {
			return err
		}
		return cli.Me(ctx)

	case "address":
		if err := fs.Parse(args); err != nil {
			return err
		}
		text := strings.Join(fs.Args(), " ")
		if strings.TrimSpace(text) == "" {
			return usageError{msg: "address: missing address text"}
		}
		return cli.Address(ctx, text)

	case "hospitals":
		loc := coordFlags(fs)
		sortBy := fs.String("sort", "distance", "sort order: distance or score")
		if err := fs.Parse(args); err != nil {
			return err
		}
		at, err := loc()
		if err != nil {
			return err
		}
		by, ok := model.ParsePlaceSort(*sortBy)
		if !ok {
			return usageError{msg: fmt.Sprintf("hospitals: unknown sort %q", *sortBy)}
		}
		return cli.Hospitals(ctx, strings.Join(fs.Args(), " "), at, by)
	}

	return usageError{msg: fmt.Sprintf("unknown command %q", cmd)}
}

func itemIDArg(fs *flag.FlagSet) (int64, error) {
	if fs.NArg() != 1 {
		return 0, usageError{msg: fs.Name() + ": expected exactly one item id"}
	}
	id, err := strconv.ParseInt(fs.Arg(0), 10, 64)
	if err != nil {
		return 0, usageError{msg: fmt.Sprintf("%s: invalid item id %q", fs.Name(), fs.Arg(0))}
	}
	return id, nil
}

// coordFlags は -x / -y を登録し、両方指定された場合だけ座標を返す関数を返します
func coordFlags(fs *flag.FlagSet) func() (*model.Coordinates, error) {
	x := fs.String("x", "", "longitude")
	y := fs.String("y", "", "latitude")
	return func() (*model.Coordinates, error) {
		if *x == "" && *y == "" {
			return nil, nil
		}
		lon, errX := strconv.ParseFloat(*x, 64)
		lat, errY := strconv.ParseFloat(*y, 64)
		if errX != nil || errY != nil {
			return nil, usageError{msg: fs.Name() + ": -x and -y must both be numbers"}
		}
		return &model.Coordinates{X: lon, Y: lat}, nil
	}
}

type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}
