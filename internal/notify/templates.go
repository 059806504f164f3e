package notify

import (
	"bytes"
	"embed"
	htmltemplate "html/template"
	"strconv"
	"strings"
	texttemplate "text/template"
	"time"

	"bladeshop-be/internal/order"
	"bladeshop-be/internal/utils"
)

//go:embed templates/*
var templateFS embed.FS

var (
	htmlTemplates = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/*.html"))
	textTemplates = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/*.txt"))
)

type emailItem struct {
	ProductName string
	VariantType string
	VariantSize string
	Quantity    int
}

type emailData struct {
	Number       string
	Date         string
	English      bool
	CustomerName string
	Email        string
	Phone        string
	Shipping     *order.Shipping
	Items        []emailItem
	Total        string
}

func newEmailData(o *order.Order, now time.Time) emailData {
	data := emailData{
		Number:   utils.ShortOrderNumber(o.ID),
		Date:     now.Format("02.01.2006, 15:04:05"),
		English:  o.Locale == "en",
		Email:    o.Email,
		Phone:    utils.PtrString(o.Phone),
		Shipping: o.Shipping,
		Total:    formatRubles(o.TotalAmount),
	}
	if o.Shipping != nil {
		data.CustomerName = o.Shipping.FullName
	}
	for _, it := range o.Items {
		data.Items = append(data.Items, emailItem{
			ProductName: it.ProductName,
			VariantType: it.VariantType,
			VariantSize: it.VariantSize,
			Quantity:    it.Quantity,
		})
	}
	return data
}

func render(name string, data emailData) (html, text string, err error) {
	var hb, tb bytes.Buffer
	if err := htmlTemplates.ExecuteTemplate(&hb, name+".html", data); err != nil {
		return "", "", err
	}
	if err := textTemplates.ExecuteTemplate(&tb, name+".txt", data); err != nil {
		return "", "", err
	}
	return hb.String(), strings.TrimSpace(tb.String()), nil
}

func AdminOrderMessage(to string, o *order.Order, now time.Time) (Message, error) {
	data := newEmailData(o, now)
	html, text, err := render("admin_order", data)
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      to,
		Subject: "Новый заказ #" + data.Number + " - JRZ Pro Black DLC",
		HTML:    html,
		Text:    text,
	}, nil
}

func CustomerOrderMessage(o *order.Order, now time.Time) (Message, error) {
	data := newEmailData(o, now)
	html, text, err := render("customer_order", data)
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      o.Email,
		Subject: "Заказ #" + data.Number + " принят - JRZ Pro Black DLC",
		HTML:    html,
		Text:    text,
	}, nil
}

func PaymentReceivedMessage(o *order.Order, now time.Time) (Message, error) {
	data := newEmailData(o, now)
	html, text, err := render("payment_received", data)
	if err != nil {
		return Message{}, err
	}
	subject := "Оплата заказа #" + data.Number + " получена - JRZ Pro Black DLC"
	if data.English {
		subject = "Payment for order #" + data.Number + " received - JRZ Pro Black DLC"
	}
	return Message{
		To:      o.Email,
		Subject: subject,
		HTML:    html,
		Text:    text,
	}, nil
}

// formatRubles groups thousands with a no-break space as ru-RU does.
func formatRubles(v int64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := strconv.FormatInt(v, 10)

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteRune('\u00a0')
		}
		b.WriteRune(r)
	}

	if neg {
		return "-" + b.String()
	}
	return b.String()
}
