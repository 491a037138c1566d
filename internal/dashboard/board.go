// Package dashboard serves the admin and seller dashboards from embedded sample data.
package dashboard

import (
	_ "embed"
	"fmt"
	"slices"
	"sync"
	"time"

	storefronterrors "github.com/abgdnv/gostorefront/internal/errors"
	"gopkg.in/yaml.v3"
)

//go:embed sample.yaml
var sample []byte

const dateLayout = "2006-01-02"

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "Pending"
	ApplicationApproved ApplicationStatus = "Approved"
	ApplicationRejected ApplicationStatus = "Rejected"
)

type TicketStatus string

const (
	TicketOpen     TicketStatus = "Open"
	TicketResolved TicketStatus = "Resolved"
)

// Stat is a headline card of a dashboard.
type Stat struct {
	Title string `json:"title" yaml:"title"`
	Value string `json:"value" yaml:"value"`
	Note  string `json:"note"  yaml:"note"`
}

// Application is a request to become a seller.
type Application struct {
	ID         string            `json:"id"                   yaml:"id"`
	Name       string            `json:"name"                 yaml:"name"`
	Email      string            `json:"email"                yaml:"email"`
	Username   string            `json:"username,omitempty"   yaml:"username"`
	Portfolio  string            `json:"portfolio,omitempty"  yaml:"portfolio"`
	Experience string            `json:"experience,omitempty" yaml:"experience"`
	Reason     string            `json:"reason,omitempty"     yaml:"reason"`
	Date       string            `json:"date"                 yaml:"date"`
	Status     ApplicationStatus `json:"status"               yaml:"status"`
}

type Ticket struct {
	ID      string       `json:"id"                yaml:"id"`
	Subject string       `json:"subject"           yaml:"subject"`
	User    string       `json:"user"              yaml:"user"`
	Message string       `json:"message,omitempty" yaml:"message"`
	Date    string       `json:"date"              yaml:"date"`
	Status  TicketStatus `json:"status"            yaml:"status"`
}

// Listing is a product row of a dashboard.
type Listing struct {
	ID       string `json:"id"                 yaml:"id"`
	Name     string `json:"name"               yaml:"name"`
	Seller   string `json:"seller,omitempty"   yaml:"seller"`
	Category string `json:"category,omitempty" yaml:"category"`
	Price    int64  `json:"price"              yaml:"price"`
	Status   string `json:"status"             yaml:"status"`
}

type Sale struct {
	ID       string `json:"id"       yaml:"id"`
	Product  string `json:"product"  yaml:"product"`
	Customer string `json:"customer" yaml:"customer"`
	Date     string `json:"date"     yaml:"date"`
	Amount   int64  `json:"amount"   yaml:"amount"`
	Status   string `json:"status"   yaml:"status"`
}

type Admin struct {
	Stats        []Stat        `json:"stats"        yaml:"stats"`
	Applications []Application `json:"applications" yaml:"applications"`
	Tickets      []Ticket      `json:"tickets"      yaml:"tickets"`
	Products     []Listing     `json:"products"     yaml:"products"`
}

type Seller struct {
	Stats    []Stat    `json:"stats"    yaml:"stats"`
	Products []Listing `json:"products" yaml:"products"`
	Sales    []Sale    `json:"sales"    yaml:"sales"`
}

// ApplicationRequest is submitted by a user who wants to sell.
type ApplicationRequest struct {
	Name       string `json:"name"       validate:"required,max=100"`
	Email      string `json:"email"      validate:"required,email"`
	Username   string `json:"username"   validate:"required,max=50"`
	Portfolio  string `json:"portfolio"  validate:"omitempty,url"`
	Experience string `json:"experience" validate:"max=2000"`
	Reason     string `json:"reason"     validate:"max=2000"`
}

// TicketRequest is submitted through the support form.
type TicketRequest struct {
	Name    string `json:"name"    validate:"required,max=100"`
	Email   string `json:"email"   validate:"required,email"`
	Subject string `json:"subject" validate:"required,max=200"`
	Message string `json:"message" validate:"required,max=5000"`
}

// Board holds the dashboard data. Review actions change it in memory only.
type Board struct {
	mu     sync.RWMutex
	admin  Admin
	seller Seller
	now    func() time.Time
}

// NewBoard loads the embedded sample data.
func NewBoard() (*Board, error) {
	return Parse(sample)
}

// Parse builds a board from YAML sample data.
func Parse(data []byte) (*Board, error) {
	var doc struct {
		Admin  Admin  `yaml:"admin"`
		Seller Seller `yaml:"seller"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse dashboard data: %w", err)
	}
	return &Board{admin: doc.Admin, seller: doc.Seller, now: time.Now}, nil
}

// Admin returns a copy of the admin dashboard.
func (b *Board) Admin() Admin {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return Admin{
		Stats:        slices.Clone(b.admin.Stats),
		Applications: slices.Clone(b.admin.Applications),
		Tickets:      slices.Clone(b.admin.Tickets),
		Products:     slices.Clone(b.admin.Products),
	}
}

// Seller returns a copy of the seller dashboard.
func (b *Board) Seller() Seller {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return Seller{
		Stats:    slices.Clone(b.seller.Stats),
		Products: slices.Clone(b.seller.Products),
		Sales:    slices.Clone(b.seller.Sales),
	}
}

func (b *Board) Approve(id string) (Application, error) {
	return b.review(id, ApplicationApproved)
}

func (b *Board) Reject(id string) (Application, error) {
	return b.review(id, ApplicationRejected)
}

func (b *Board) review(id string, status ApplicationStatus) (Application, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := slices.IndexFunc(b.admin.Applications, func(a Application) bool { return a.ID == id })
	if i < 0 {
		return Application{}, fmt.Errorf("application %s: %w", id, storefronterrors.ErrApplicationNotFound)
	}
	b.admin.Applications[i].Status = status
	return b.admin.Applications[i], nil
}

// Resolve marks a support ticket as resolved.
func (b *Board) Resolve(id string) (Ticket, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := slices.IndexFunc(b.admin.Tickets, func(t Ticket) bool { return t.ID == id })
	if i < 0 {
		return Ticket{}, fmt.Errorf("ticket %s: %w", id, storefronterrors.ErrTicketNotFound)
	}
	b.admin.Tickets[i].Status = TicketResolved
	return b.admin.Tickets[i], nil
}

// Apply files a pending seller application.
func (b *Board) Apply(req ApplicationRequest) Application {
	b.mu.Lock()
	defer b.mu.Unlock()
	app := Application{
		ID:         fmt.Sprintf("APP%03d", len(b.admin.Applications)+1),
		Name:       req.Name,
		Email:      req.Email,
		Username:   req.Username,
		Portfolio:  req.Portfolio,
		Experience: req.Experience,
		Reason:     req.Reason,
		Date:       b.now().Format(dateLayout),
		Status:     ApplicationPending,
	}
	b.admin.Applications = append(b.admin.Applications, app)
	return app
}

// OpenTicket files an open support ticket.
func (b *Board) OpenTicket(req TicketRequest) Ticket {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := Ticket{
		ID:      fmt.Sprintf("TKT%03d", len(b.admin.Tickets)+1),
		Subject: req.Subject,
		User:    req.Email,
		Message: req.Message,
		Date:    b.now().Format(dateLayout),
		Status:  TicketOpen,
	}
	b.admin.Tickets = append(b.admin.Tickets, t)
	return t
}
