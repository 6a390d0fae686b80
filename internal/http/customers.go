package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/harborpoint/customerd/internal/domain"
	"github.com/harborpoint/customerd/internal/service"
	"github.com/harborpoint/customerd/pkg/httpx"
	"github.com/harborpoint/customerd/pkg/slogx"
)

type CustomerRequest struct {
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	Email            string    `json:"email"`
	Region           string    `json:"region"`
	RegistrationDate time.Time `json:"registration_date"`
}

type CustomerResponse struct {
	ID               string    `json:"id"`
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	Email            string    `json:"email"`
	Region           string    `json:"region"`
	RegistrationDate time.Time `json:"registration_date"`
}

func toCustomerResponse(c domain.Customer) CustomerResponse {
	return CustomerResponse{
		ID:               c.ID,
		FirstName:        c.FirstName,
		LastName:         c.LastName,
		Email:            c.Email,
		Region:           c.Region,
		RegistrationDate: c.RegistrationDate,
	}
}

func toCustomerResponses(customers []domain.Customer) []CustomerResponse {
	out := make([]CustomerResponse, 0, len(customers))
	for _, c := range customers {
		out = append(out, toCustomerResponse(c))
	}
	return out
}

func (r CustomerRequest) validate() string {
	switch {
	case r.FirstName == "":
		return "first_name is required"
	case r.LastName == "":
		return "last_name is required"
	case r.Email == "":
		return "email is required"
	case r.RegistrationDate.IsZero():
		return "registration_date is required"
	}
	return ""
}

type CustomersHandler struct {
	CustomerService *service.CustomerService
}

// HandleList godoc
//
//	@Summary		List Customers Endpoint
//	@Description	Returns every customer record, newest first
//	@Tags			Customers
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}		CustomerResponse	"customers"
//	@Failure		401	{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		500	{object}	httpx.ErrorResponse	"error, error_description"
//	@Router			/api/customers [get].
func (h *CustomersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	customers, err := h.CustomerService.GetAll(ctx)
	if err != nil {
		log.Error("failed to list customers", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to list customers")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toCustomerResponses(customers))
}

// HandleGet godoc
//
//	@Summary		Get Customer Endpoint
//	@Description	Returns a single customer by its id
//	@Tags			Customers
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string				true	"Customer ID"
//	@Success		200	{object}	CustomerResponse	"customer"
//	@Failure		401	{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		404	{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		500	{object}	httpx.ErrorResponse	"error, error_description"
//	@Router			/api/customers/{id} [get].
func (h *CustomersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	customer, err := h.CustomerService.GetByID(ctx, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, service.ErrCustomerNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "Customer not found")
			return
		}
		log.Error("failed to load customer", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to load customer")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toCustomerResponse(customer))
}

// HandleFilter godoc
//
//	@Summary		Filter Customers Endpoint
//	@Description	Returns the customers matching every provided criterion. Name matches first or last name as a substring, region matches exactly (case-insensitive), and the date bounds are inclusive.
//	@Tags			Customers
//	@Security		BearerAuth
//	@Produce		json
//	@Param			name		query		string				false	"Substring of first or last name"
//	@Param			region		query		string				false	"Exact region (case-insensitive)"
//	@Param			startDate	query		string				false	"Earliest registration date (YYYY-MM-DD or RFC3339)"
//	@Param			endDate		query		string				false	"Latest registration date (YYYY-MM-DD or RFC3339)"
//	@Success		200			{array}		CustomerResponse	"matching customers"
//	@Failure		400			{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		401			{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		500			{object}	httpx.ErrorResponse	"error, error_description"
//	@Router			/api/customers/filter [get].
func (h *CustomersHandler) HandleFilter(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	query := r.URL.Query()
	filter := domain.CustomerFilter{
		Name:   query.Get("name"),
		Region: query.Get("region"),
	}

	var err error
	if filter.RegisteredFrom, err = parseDateParam(query.Get("startDate")); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "startDate must be YYYY-MM-DD or RFC3339")
		return
	}
	if filter.RegisteredTo, err = parseDateParam(query.Get("endDate")); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "endDate must be YYYY-MM-DD or RFC3339")
		return
	}

	customers, err := h.CustomerService.Filter(ctx, filter)
	if err != nil {
		log.Error("failed to filter customers", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to filter customers")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toCustomerResponses(customers))
}

// HandleCreate godoc
//
//	@Summary		Create Customer Endpoint
//	@Description	Creates a new customer record. Requires the Admin role.
//	@Tags			Customers
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			customer	body		CustomerRequest		true	"Customer fields"
//	@Success		201			{object}	CustomerResponse	"created customer"
//	@Failure		400			{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		401			{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		403			{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		500			{object}	httpx.ErrorResponse	"error, error_description"
//	@Router			/api/customers [post].
func (h *CustomersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req CustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Request body must be JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", msg)
		return
	}

	created, err := h.CustomerService.Create(ctx, domain.Customer{
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Email:            req.Email,
		Region:           req.Region,
		RegistrationDate: req.RegistrationDate,
	})
	if err != nil {
		log.Error("failed to create customer", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to create customer")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toCustomerResponse(created))
}

// HandleUpdate godoc
//
//	@Summary		Update Customer Endpoint
//	@Description	Replaces the fields of an existing customer. Requires the Admin role.
//	@Tags			Customers
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id			path		string				true	"Customer ID"
//	@Param			customer	body		CustomerRequest		true	"Customer fields"
//	@Success		200			{object}	CustomerResponse	"updated customer"
//	@Failure		400			{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		401			{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		403			{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		404			{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		500			{object}	httpx.ErrorResponse	"error, error_description"
//	@Router			/api/customers/{id} [put].
func (h *CustomersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req CustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Request body must be JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", msg)
		return
	}

	updated, err := h.CustomerService.Update(ctx, domain.Customer{
		ID:               r.PathValue("id"),
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Email:            req.Email,
		Region:           req.Region,
		RegistrationDate: req.RegistrationDate,
	})
	if err != nil {
		if errors.Is(err, service.ErrCustomerNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "Customer not found")
			return
		}
		log.Error("failed to update customer", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to update customer")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toCustomerResponse(updated))
}

// HandleDelete godoc
//
//	@Summary		Delete Customer Endpoint
//	@Description	Removes a customer record. Requires the Admin role.
//	@Tags			Customers
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path	string	true	"Customer ID"
//	@Success		204	"deleted"
//	@Failure		401	{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		403	{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		404	{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		500	{object}	httpx.ErrorResponse	"error, error_description"
//	@Router			/api/customers/{id} [delete].
func (h *CustomersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if err := h.CustomerService.Delete(ctx, r.PathValue("id")); err != nil {
		if errors.Is(err, service.ErrCustomerNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "Customer not found")
			return
		}
		log.Error("failed to delete customer", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to delete customer")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parseDateParam accepts either a bare date or a full RFC3339 timestamp.
func parseDateParam(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, errors.New("unrecognized date format")
}
