package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"jo3qma.com/marketplace/internal/domain/model"
)

// multipartForm はスカラー項目と画像ファイルをまとめたフォームです
type multipartForm struct {
	fields [][2]string
	files  []filePart
}

type filePart struct {
	field       string
	name        string
	contentType string
	data        []byte
}

// uploadImage はアップロード用に読み込んだ画像です
type uploadImage struct {
	name        string
	contentType string
	data        []byte
}

// imageLoader は画像の参照から本体を読み込みます（テストで差し替え可能）
type imageLoader func(ctx context.Context, src model.ImageSource, index int) (uploadImage, error)

func newMultipartForm() *multipartForm {
	return &multipartForm{}
}

func (f *multipartForm) field(name, value string) {
	f.fields = append(f.fields, [2]string{name, value})
}

func (f *multipartForm) file(field string, img uploadImage) {
	f.files = append(f.files, filePart{field: field, name: img.name, contentType: img.contentType, data: img.data})
}

// request はフォームをエンコードしたリクエストを作成します
// Content-Type には boundary 付きの値を設定します
func (f *multipartForm) request(ctx context.Context, method, target string) (*http.Request, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	for _, kv := range f.fields {
		if err := w.WriteField(kv[0], kv[1]); err != nil {
			return nil, fmt.Errorf("failed to write field %s: %w", kv[0], err)
		}
	}
	for _, fp := range f.files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, escapeQuotes(fp.field), escapeQuotes(fp.name)))
		h.Set("Content-Type", fp.contentType)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, fmt.Errorf("failed to create part %s: %w", fp.name, err)
		}
		if _, err := part.Write(fp.data); err != nil {
			return nil, fmt.Errorf("failed to write part %s: %w", fp.name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	return req, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

var extPattern = regexp.MustCompile(`\.(\w+)$`)

// imageFileName は参照の末尾からファイル名を取り出し、取り出せなければ連番の名前を付けます
func imageFileName(ref string, index int) string {
	ref = strings.SplitN(ref, "?", 2)[0]
	name := path.Base(strings.ReplaceAll(ref, "\\", "/"))
	if name == "" || name == "." || name == "/" {
		return fmt.Sprintf("upload_%d.jpg", index)
	}
	return name
}

// imageContentType は拡張子から image/<ext> を決めます
func imageContentType(name string) string {
	m := extPattern.FindStringSubmatch(name)
	if m == nil {
		return "image/jpeg"
	}
	ext := strings.ToLower(m[1])
	if ext == "jpg" {
		ext = "jpeg"
	}
	return "image/" + ext
}

// defaultImageLoader は端末上のファイルはそのまま読み込み、ホスト済みの画像はダウンロードします
func (c *Client) defaultImageLoader(ctx context.Context, src model.ImageSource, index int) (uploadImage, error) {
	name := imageFileName(src.Ref, index)
	img := uploadImage{name: name, contentType: imageContentType(name)}

	if src.IsRemote() {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.Ref, nil)
		if err != nil {
			return uploadImage{}, fmt.Errorf("failed to create request: %w", err)
		}
		res, err := c.fetcher.Do(ctx, req, 0)
		if err != nil {
			return uploadImage{}, model.Transport(err)
		}
		if !res.OK() {
			return uploadImage{}, model.Transport(fmt.Errorf("failed to download %s: status %d", src.Ref, res.StatusCode))
		}
		if ct := res.Header.Get("Content-Type"); strings.HasPrefix(ct, "image/") {
			img.contentType = ct
		}
		img.data = res.Body
		return img, nil
	}

	p := filepath.FromSlash(strings.TrimPrefix(src.Ref, "file://"))
	f, err := os.Open(p)
	if err != nil {
		return uploadImage{}, model.Invalid(fmt.Sprintf("cannot open image %s", name))
	}
	defer drain(f, c.logger)

	data, err := io.ReadAll(f)
	if err != nil {
		return uploadImage{}, fmt.Errorf("failed to read image %s: %w", name, err)
	}
	img.data = data
	return img, nil
}
