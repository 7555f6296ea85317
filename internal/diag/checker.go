package diag

import (
	"context"  // Run deadline
	"errors"   // Error inspection
	"fmt"      // Report formatting
	"io"       // Report output
	"net/http" // HTTP methods and status codes
	"time"     // Step timing

	"github.com/google/uuid" // Throwaway account names
)

// ErrSkipped marks a step that could not run because of the store's contents
var ErrSkipped = errors.New("skipped")

// Step is the outcome of one check
type Step struct {
	Name     string        // Step label
	Err      error         // nil on success, ErrSkipped when not applicable
	Duration time.Duration // Time spent
}

// Passed reports whether the step succeeded or was skipped
func (s Step) Passed() bool {
	return s.Err == nil || errors.Is(s.Err, ErrSkipped)
}

// Report collects every step of a run
type Report struct {
	Steps []Step // In execution order
}

// OK reports whether every step passed
func (r Report) OK() bool {
	for _, s := range r.Steps {
		if !s.Passed() {
			return false
		}
	}
	return true
}

// Print writes one line per step followed by a summary
func (r Report) Print(w io.Writer) {
	failed := 0
	for _, s := range r.Steps {
		switch {
		case s.Err == nil:
			fmt.Fprintf(w, "PASS  %-24s %s\n", s.Name, s.Duration.Round(time.Millisecond))
		case errors.Is(s.Err, ErrSkipped):
			fmt.Fprintf(w, "SKIP  %-24s %v\n", s.Name, s.Err)
		default:
			failed++
			fmt.Fprintf(w, "FAIL  %-24s %v\n", s.Name, s.Err)
		}
	}
	fmt.Fprintf(w, "%d steps, %d failed\n", len(r.Steps), failed)
}

// Checker walks through the main customer flows of a running server
type Checker struct {
	Client        *Client // API client
	AdminEmail    string  // Optional; enables the dashboard check
	AdminPassword string  // Admin password
}

type authResponse struct {
	Token string `json:"token"`
	User  struct {
		ID    uint   `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

type productList struct {
	Products []struct {
		ID    uint   `json:"id"`
		Name  string `json:"name"`
		Stock int    `json:"stock"`
	} `json:"products"`
	Total int64 `json:"total"`
}

type cart struct {
	Items []struct {
		ProductID uint `json:"product_id"`
		Quantity  int  `json:"quantity"`
	} `json:"items"`
	Count int `json:"count"`
}

// Run executes the checks in order. A failed step that later steps depend on
// stops the run.
func (c *Checker) Run(ctx context.Context) Report {
	var rep Report
	step := func(name string, fn func() error) bool {
		start := time.Now()
		err := fn()
		rep.Steps = append(rep.Steps, Step{Name: name, Err: err, Duration: time.Since(start)})
		return err == nil
	}

	if !step("health", func() error {
		var out struct {
			Status string `json:"status"`
		}
		if err := c.Client.Do(ctx, http.MethodGet, "/api/health", "", nil, &out, http.StatusOK); err != nil {
			return err
		}
		if out.Status != "ok" && out.Status != "degraded" { // A degraded cache still serves requests
			return fmt.Errorf("status is %q", out.Status)
		}
		return nil
	}) {
		return rep
	}

	email := "diag-" + uuid.NewString()[:8] + "@example.com" // Throwaway account
	password := uuid.NewString()
	var token string
	if !step("register", func() error {
		body := map[string]string{"name": "Diagnostics", "email": email, "password": password}
		var out authResponse
		if err := c.Client.Do(ctx, http.MethodPost, "/api/users/register", "", body, &out, http.StatusCreated); err != nil {
			return err
		}
		if out.Token == "" {
			return errors.New("no token in response")
		}
		return nil
	}) {
		return rep
	}
	if !step("login", func() error {
		var out authResponse
		body := map[string]string{"email": email, "password": password}
		if err := c.Client.Do(ctx, http.MethodPost, "/api/users/login", "", body, &out, http.StatusOK); err != nil {
			return err
		}
		token = out.Token
		return nil
	}) {
		return rep
	}
	step("profile", func() error {
		var out struct {
			User struct {
				Email string `json:"email"`
			} `json:"user"`
		}
		if err := c.Client.Do(ctx, http.MethodGet, "/api/users/profile", token, nil, &out, http.StatusOK); err != nil {
			return err
		}
		if out.User.Email != email {
			return fmt.Errorf("profile email %q, want %q", out.User.Email, email)
		}
		return nil
	})
	step("reject bad token", func() error {
		return c.Client.Do(ctx, http.MethodGet, "/api/users/profile", "not-a-token", nil, nil, http.StatusUnauthorized)
	})
	step("categories", func() error {
		return c.Client.Do(ctx, http.MethodGet, "/api/categories", "", nil, nil, http.StatusOK)
	})

	var productID uint
	step("list products", func() error {
		var out productList
		if err := c.Client.Do(ctx, http.MethodGet, "/api/products?in_stock=true&page_size=1", "", nil, &out, http.StatusOK); err != nil {
			return err
		}
		if len(out.Products) > 0 {
			productID = out.Products[0].ID
		}
		return nil
	})

	c.cartSteps(ctx, step, token, productID)
	c.adminSteps(ctx, step)
	return rep
}

// cartSteps adds a product, reads it back and empties the cart again
func (c *Checker) cartSteps(ctx context.Context, step func(string, func() error) bool, token string, productID uint) {
	if productID == 0 {
		step("cart round trip", func() error {
			return fmt.Errorf("%w: no product in stock", ErrSkipped)
		})
		return
	}
	path := fmt.Sprintf("/api/cart/%d", productID)
	if !step("cart add", func() error {
		body := map[string]any{"product_id": productID, "quantity": 1}
		return c.Client.Do(ctx, http.MethodPost, "/api/cart", token, body, nil, http.StatusOK)
	}) {
		return
	}
	step("cart read", func() error {
		var out cart
		if err := c.Client.Do(ctx, http.MethodGet, "/api/cart", token, nil, &out, http.StatusOK); err != nil {
			return err
		}
		if len(out.Items) != 1 || out.Items[0].ProductID != productID {
			return fmt.Errorf("cart has %d items, want product %d", len(out.Items), productID)
		}
		return nil
	})
	step("cart remove", func() error {
		return c.Client.Do(ctx, http.MethodDelete, path, token, nil, nil, http.StatusOK)
	})
}

// adminSteps logs in as the admin and reads the dashboard
func (c *Checker) adminSteps(ctx context.Context, step func(string, func() error) bool) {
	if c.AdminEmail == "" || c.AdminPassword == "" {
		return
	}
	var token string
	if !step("admin login", func() error {
		var out authResponse
		body := map[string]string{"email": c.AdminEmail, "password": c.AdminPassword}
		if err := c.Client.Do(ctx, http.MethodPost, "/api/users/login", "", body, &out, http.StatusOK); err != nil {
			return err
		}
		token = out.Token
		return nil
	}) {
		return
	}
	step("admin dashboard", func() error {
		var out struct {
			TotalUsers int64 `json:"total_users"`
		}
		if err := c.Client.Do(ctx, http.MethodGet, "/api/admin/dashboard", token, nil, &out, http.StatusOK); err != nil {
			return err
		}
		if out.TotalUsers < 1 {
			return errors.New("dashboard reports no users")
		}
		return nil
	})
}
