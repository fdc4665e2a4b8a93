package service

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"strings"
	"time"

	"currency-converter/internal/currency"
	"currency-converter/internal/locale"
	"currency-converter/internal/widget"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

const sessionCookie = "sid"

//go:embed templates/page.html
var templatesFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templatesFS, "templates/page.html"))

func (s *Service) newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		Immutable:             true,
		ErrorHandler:          s.errorHandler,
	})

	app.Get("/", s.handlePage)
	app.Get("/state", s.handleState)
	app.Post("/locale/:lang", s.handleLocale)
	app.Post("/select", s.handleSelect)
	app.Post("/swap", s.handleSwap)
	app.Post("/convert", s.handleConvert)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	return app
}

func (s *Service) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		s.log.Errorf("%s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(code).SendString(err.Error())
}

// widget returns the page state bound to the session cookie, opening a new
// page with the default pair when there is none. A new page fetches rates
// only when load is set; handlers that fetch or recompute on their own
// pass false.
func (s *Service) widget(c *fiber.Ctx, load bool) *widget.Widget {
	if id := c.Cookies(sessionCookie); id != "" {
		if w, ok := s.sessions.get(id); ok {
			return w
		}
	}

	id := uuid.NewString()
	w := widget.New(s.log.WithField("session", id), s, s)
	s.sessions.add(id, w)
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(time.Duration(s.SessionTTL) * time.Minute),
	})
	s.log.WithField("session", id).Debug("new session")

	if load {
		w.LoadRates(c.UserContext())
	}
	return w
}

type form struct {
	Amount string `form:"amount"`
	From   string `form:"from"`
	To     string `form:"to"`
}

// applyForm copies the posted amount into w and returns the posted
// selections. Codes outside the currency list select nothing. A request
// without a body keeps the current form.
func applyForm(c *fiber.Ctx, w *widget.Widget) (form, error) {
	if len(c.Body()) == 0 {
		v := w.View()
		return form{Amount: v.Amount, From: v.From, To: v.To}, nil
	}
	var f form
	if err := c.BodyParser(&f); err != nil {
		return f, fiber.NewError(fiber.StatusBadRequest, "bad form: "+err.Error())
	}
	// The values outlive the request, so they must not share its buffer.
	f.Amount = utils.CopyString(f.Amount)
	f.From = utils.CopyString(f.From)
	f.To = utils.CopyString(f.To)
	if !currency.Known(f.From) {
		f.From = ""
	}
	if !currency.Known(f.To) {
		f.To = ""
	}
	w.SetAmount(f.Amount)
	return f, nil
}

func (s *Service) handlePage(c *fiber.Ctx) error {
	return s.render(c, s.widget(c, true))
}

func (s *Service) handleState(c *fiber.Ctx) error {
	return c.JSON(s.widget(c, true).View())
}

func (s *Service) handleLocale(c *fiber.Ctx) error {
	l, err := locale.Parse(c.Params("lang"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	w := s.widget(c, false)
	f, err := applyForm(c, w)
	if err != nil {
		return err
	}
	w.SetSelection(f.From, f.To)
	w.SetLocale(l)
	return s.respond(c, w)
}

func (s *Service) handleSelect(c *fiber.Ctx) error {
	w := s.widget(c, false)
	f, err := applyForm(c, w)
	if err != nil {
		return err
	}
	w.Select(c.UserContext(), f.From, f.To)
	return s.respond(c, w)
}

func (s *Service) handleSwap(c *fiber.Ctx) error {
	w := s.widget(c, false)
	f, err := applyForm(c, w)
	if err != nil {
		return err
	}
	w.SetSelection(f.From, f.To)
	w.Swap(c.UserContext())
	return s.respond(c, w)
}

func (s *Service) handleConvert(c *fiber.Ctx) error {
	w := s.widget(c, true)
	f, err := applyForm(c, w)
	if err != nil {
		return err
	}
	if w.SetSelection(f.From, f.To) {
		w.LoadRates(c.UserContext())
	}
	w.Submit(c.UserContext())
	return s.respond(c, w)
}

// respond answers JSON clients with the page state and browsers with a
// redirect back to the page.
func (s *Service) respond(c *fiber.Ctx, w *widget.Widget) error {
	if wantsJSON(c) {
		return c.JSON(w.View())
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}

func wantsJSON(c *fiber.Ctx) bool {
	return strings.Contains(c.Get(fiber.HeaderAccept), fiber.MIMEApplicationJSON)
}

func (s *Service) render(c *fiber.Ctx, w *widget.Widget) error {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, w.View()); err != nil {
		s.log.WithFields(logrus.Fields{"component": "render"}).Errorln("execute page template:", err)
		return fiber.NewError(fiber.StatusInternalServerError, "render page")
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(buf.Bytes())
}
