package handler

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"jo3qma.com/marketplace/internal/domain/model"
)

func renderCategories(w io.Writer, categories []*model.Category, selected int64) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\tID\tNAME")
	for _, c := range categories {
		mark := ""
		if c.ID == selected {
			mark = "*"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\n", mark, c.ID, c.Name)
	}
	_ = tw.Flush()
}

func renderItems(w io.Writer, items []*model.Item) {
	if len(items) == 0 {
		fmt.Fprintln(w, "no items")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tPRICE\tSTATUS\tCATEGORY\tSELLER\tPLACE")
	for _, it := range items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			it.ItemID, it.Title, formatPrice(it.Price), it.Status, it.CategoryName, it.Nickname, itemPlace(it))
	}
	_ = tw.Flush()
}

func renderItem(w io.Writer, it *model.Item, owner bool) {
	if it == nil {
		return
	}
	fmt.Fprintf(w, "%s  (#%d)\n", it.Title, it.ItemID)
	fmt.Fprintf(w, "price:    %s\n", formatPrice(it.Price))
	fmt.Fprintf(w, "status:   %s\n", it.Status)
	if it.CategoryName != "" {
		fmt.Fprintf(w, "category: %s\n", it.CategoryName)
	}
	fmt.Fprintf(w, "seller:   %s\n", it.Nickname)
	if place := itemPlace(it); place != "" {
		fmt.Fprintf(w, "place:    %s\n", place)
	}
	if !it.CreatedAt.IsZero() {
		fmt.Fprintf(w, "posted:   %s\n", it.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	for i, img := range it.Images {
		fmt.Fprintf(w, "image %d:  %s\n", i+1, img.URL)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, it.PlainContent)
	if owner {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "(your listing: `market upload -id %d` to edit, `market delete %d` to delete)\n", it.ItemID, it.ItemID)
	}
}

func renderProfile(w io.Writer, p *model.Profile) {
	if p == nil {
		return
	}
	fmt.Fprintf(w, "%s (@%s)\n", displayName(p.UserInfo), p.Username)
	addr := p.Addr
	if addr == "" {
		addr = "-"
	}
	fmt.Fprintf(w, "address: %s\n", addr)
	fmt.Fprintf(w, "listings: %d\n", len(p.Items))
	if len(p.Items) > 0 {
		renderItems(w, p.Items)
	}
}

func renderPlaces(w io.Writer, places []*model.Place) {
	if len(places) == 0 {
		fmt.Fprintln(w, "no places")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tDISTANCE\tSCORE\tRATING\tPHONE\tADDRESS")
	for _, p := range places {
		addr := p.RoadAddressName
		if addr == "" {
			addr = p.AddressName
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			p.PlaceName, formatDistance(p.Distance), formatOptional(p.PredictedRecommendationScore, 2),
			formatOptional(p.Rating, 1), p.Phone, addr)
	}
	_ = tw.Flush()
}

func displayName(u model.UserInfo) string {
	if u.Nickname != "" {
		return u.Nickname
	}
	return u.Username
}

func itemPlace(it *model.Item) string {
	place := it.Addr
	if place == "" {
		place = it.UserAddr
	}
	if it.DistanceM != nil {
		place = strings.TrimSpace(place + " " + formatDistance(it.DistanceM))
	}
	return place
}

// formatPrice は3桁区切りのウォン表記を返します
func formatPrice(p int64) string {
	s := strconv.FormatInt(p, 10)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String() + " KRW"
	if neg {
		out = "-" + out
	}
	return out
}

func formatDistance(m *float64) string {
	switch {
	case m == nil:
		return "-"
	case *m >= 1000:
		return strconv.FormatFloat(*m/1000, 'f', 1, 64) + "km"
	default:
		return strconv.FormatFloat(*m, 'f', 0, 64) + "m"
	}
}

func formatOptional(v *float64, prec int) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', prec, 64)
}
