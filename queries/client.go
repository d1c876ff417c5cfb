// queries/client.go
package queries

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jeevanhealth/shell/access"
	"github.com/jeevanhealth/shell/cache"
	shell_errors "github.com/jeevanhealth/shell/errors"
	"github.com/jeevanhealth/shell/gateway"
	logger "github.com/jeevanhealth/shell/logging"
	"github.com/jeevanhealth/shell/model"
)

// Client is the typed face of the remote gateway: one method per named
// query or mutation. Queries read through the server-state cache; mutations
// go straight to the gateway and, only on success, invalidate the cache
// keys their result makes stale, as one batch per mutation.
type Client struct {
	gw    gateway.Invoker
	cache *cache.Store
}

func New(gw gateway.Invoker, store *cache.Store) *Client {
	return &Client{gw: gw, cache: store}
}

// Cache exposes the underlying store for entry-level reads (the resolver
// inspects entry statuses without triggering fetches).
func (c *Client) Cache() *cache.Store {
	return c.cache
}

// query fetches op through the cache under key. When the gateway is not yet
// available it short-circuits to the zero value so dependent callers see a
// neutral result during startup instead of an error.
func query[T any](ctx context.Context, c *Client, key cache.Key, op string, args any) (T, error) {
	var zero T
	if c.gw == nil {
		return zero, nil
	}
	e := c.cache.Fetch(ctx, key, func(ctx context.Context) (any, error) {
		var out T
		if err := c.gw.Invoke(ctx, op, args, &out); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return out, nil
	})
	if e.Err != nil {
		return zero, e.Err
	}
	out, _ := e.Data.(T)
	return out, nil
}

func (c *Client) mutate(ctx context.Context, op string, args any, result any) error {
	if c.gw == nil {
		return shell_errors.ErrGatewayUnavailable
	}
	if err := c.gw.Invoke(ctx, op, args, result); err != nil {
		logger.Warn("Mutation failed", zap.String("op", op), zap.Error(err))
		return err
	}
	return nil
}

// ---- Profile and capability queries ----

func (c *Client) CallerProfile(ctx context.Context) (*model.Profile, error) {
	return query[*model.Profile](ctx, c, KeyProfile(), "getCallerUserProfile", nil)
}

// IsAdmin probes the caller's admin grant. Probes are never retried: a
// failed probe settles as "capability absent" so role resolution fails fast
// instead of stalling the verdict.
func (c *Client) IsAdmin(ctx context.Context) (bool, error) {
	return query[bool](ctx, c, KeyIsAdmin(), "isCallerAdmin", nil)
}

func (c *Client) HasLabExecutiveCapabilities(ctx context.Context) (bool, error) {
	return query[bool](ctx, c, KeyLabExecutive(), "hasLabExecutiveCapabilities", nil)
}

func (c *Client) HasPhlebotomistRole(ctx context.Context) (bool, error) {
	return query[bool](ctx, c, KeyPhlebotomist(), "hasPhlebotomistRole", nil)
}

func (c *Client) HasDoctorRole(ctx context.Context) (bool, error) {
	return query[bool](ctx, c, KeyDoctor(), "hasDoctorRole", nil)
}

// ---- Capability probes for access policies ----

func (c *Client) AdminProbe() access.Probe {
	return access.Probe{Name: "admin", Key: KeyIsAdmin(), Check: c.IsAdmin}
}

func (c *Client) LabExecutiveProbe() access.Probe {
	return access.Probe{Name: "labExecutive", Key: KeyLabExecutive(), Check: c.HasLabExecutiveCapabilities}
}

func (c *Client) PhlebotomistProbe() access.Probe {
	return access.Probe{Name: "phlebotomist", Key: KeyPhlebotomist(), Check: c.HasPhlebotomistRole}
}

func (c *Client) DoctorProbe() access.Probe {
	return access.Probe{Name: "doctor", Key: KeyDoctor(), Check: c.HasDoctorRole}
}

// ---- Catalog queries ----

func (c *Client) AllServices(ctx context.Context) ([]model.Service, error) {
	return query[[]model.Service](ctx, c, KeyServices(), "allServices", nil)
}

func (c *Client) ActiveHealthPackages(ctx context.Context) ([]model.HealthPackage, error) {
	return query[[]model.HealthPackage](ctx, c, KeyHealthPackages(), "getActiveHealthPackages", nil)
}

// ---- Customer queries and mutations ----

func (c *Client) AllCustomers(ctx context.Context) ([]model.Customer, error) {
	return query[[]model.Customer](ctx, c, KeyAllCustomers(), "getAllCustomers", nil)
}

func (c *Client) CustomerByID(ctx context.Context, id string) (*model.Customer, error) {
	return query[*model.Customer](ctx, c, KeyCustomer(id), "getCustomerById", map[string]string{"customer_id": id})
}

func (c *Client) MyCustomerProfile(ctx context.Context) (*model.Customer, error) {
	return query[*model.Customer](ctx, c, KeyMyCustomer(), "getMyCustomerProfile", nil)
}

func (c *Client) AddCustomer(ctx context.Context, customer model.Customer) error {
	if err := c.mutate(ctx, "addCustomer", customer, nil); err != nil {
		return err
	}
	c.cache.Invalidate(KeyAllCustomers())
	return nil
}

func (c *Client) UpdateCustomer(ctx context.Context, customer model.Customer) error {
	if err := c.mutate(ctx, "updateCustomer", customer, nil); err != nil {
		return err
	}
	c.cache.Invalidate(KeyAllCustomers(), KeyCustomer(customer.ID))
	return nil
}

func (c *Client) DeleteCustomer(ctx context.Context, id string) error {
	if err := c.mutate(ctx, "deleteCustomer", map[string]string{"customer_id": id}, nil); err != nil {
		return err
	}
	c.cache.Invalidate(KeyAllCustomers(), KeyCustomer(id))
	return nil
}

// ---- Patient queries and mutations ----

func (c *Client) AllPatients(ctx context.Context) ([]model.Patient, error) {
	return query[[]model.Patient](ctx, c, KeyAllPatients(), "getAllPatients", nil)
}

func (c *Client) PatientByID(ctx context.Context, id string) (*model.Patient, error) {
	return query[*model.Patient](ctx, c, KeyPatient(id), "getPatientById", map[string]string{"patient_id": id})
}

func (c *Client) PatientsByCustomer(ctx context.Context, customerID string) ([]model.Patient, error) {
	return query[[]model.Patient](ctx, c, KeyPatientsByCustomer(customerID), "getPatientsByCustomerId", map[string]string{"customer_id": customerID})
}

func (c *Client) MyPatients(ctx context.Context) ([]model.Patient, error) {
	return query[[]model.Patient](ctx, c, KeyMyPatients(), "getMyPatients", nil)
}

func (c *Client) AddPatient(ctx context.Context, patient model.Patient) error {
	if err := c.mutate(ctx, "addPatient", patient, nil); err != nil {
		return err
	}
	c.cache.Invalidate(KeyAllPatients(), KeyPatientsByCustomer(patient.CustomerID), KeyMyPatients())
	return nil
}

func (c *Client) UpdatePatient(ctx context.Context, patient model.Patient) error {
	if err := c.mutate(ctx, "updatePatient", patient, nil); err != nil {
		return err
	}
	c.cache.Invalidate(
		KeyAllPatients(),
		KeyPatient(patient.ID),
		KeyPatientsByCustomer(patient.CustomerID),
		KeyMyPatients(),
	)
	return nil
}

func (c *Client) DeletePatient(ctx context.Context, id string) error {
	if err := c.mutate(ctx, "deletePatient", map[string]string{"patient_id": id}, nil); err != nil {
		return err
	}
	c.cache.Invalidate(KeyAllPatients(), KeyPatient(id), KeyMyPatients())
	return nil
}

// ---- Vitals queries and mutations ----

func (c *Client) AllVitals(ctx context.Context) ([]model.Vital, error) {
	return query[[]model.Vital](ctx, c, KeyAllVitals(), "getAllVitals", nil)
}

func (c *Client) VitalByID(ctx context.Context, id string) (*model.Vital, error) {
	return query[*model.Vital](ctx, c, KeyVital(id), "getVitalById", map[string]string{"vital_id": id})
}

func (c *Client) VitalsByPatient(ctx context.Context, patientID string) ([]model.Vital, error) {
	return query[[]model.Vital](ctx, c, KeyVitalsByPatient(patientID), "getVitalsByPatientId", map[string]string{"patient_id": patientID})
}

func (c *Client) MyFamilyVitals(ctx context.Context) ([]model.Vital, error) {
	return query[[]model.Vital](ctx, c, KeyMyFamilyVitals(), "getMyFamilyVitals", nil)
}

func (c *Client) AddVital(ctx context.Context, vital model.Vital) error {
	if err := c.mutate(ctx, "addVital", vital, nil); err != nil {
		return err
	}
	c.cache.Invalidate(KeyAllVitals(), KeyVitalsByPatient(vital.PatientID), KeyMyFamilyVitals())
	return nil
}

func (c *Client) UpdateVital(ctx context.Context, vital model.Vital) error {
	if err := c.mutate(ctx, "updateVital", vital, nil); err != nil {
		return err
	}
	c.cache.Invalidate(
		KeyAllVitals(),
		KeyVital(vital.ID),
		KeyVitalsByPatient(vital.PatientID),
		KeyMyFamilyVitals(),
	)
	return nil
}

func (c *Client) DeleteVital(ctx context.Context, id string) error {
	if err := c.mutate(ctx, "deleteVital", map[string]string{"vital_id": id}, nil); err != nil {
		return err
	}
	c.cache.Invalidate(KeyAllVitals(), KeyVital(id), KeyMyFamilyVitals())
	return nil
}

// ---- Profile and role mutations ----

func (c *Client) SaveCallerProfile(ctx context.Context, profile model.Profile) error {
	if err := c.mutate(ctx, "saveCallerUserProfile", profile, nil); err != nil {
		return err
	}
	c.cache.Invalidate(KeyProfile())
	return nil
}

func (c *Client) AssignRole(ctx context.Context, principal string, role model.Role) error {
	args := map[string]string{"principal": principal, "role": string(role)}
	if err := c.mutate(ctx, "assignHealthcareRole", args, nil); err != nil {
		return err
	}
	c.cache.Invalidate(KeyAllUsers())
	return nil
}

// ---- Booking queries and mutations ----

func (c *Client) AllBookings(ctx context.Context) ([]model.Booking, error) {
	return query[[]model.Booking](ctx, c, KeyAllBookings(), "getAllBookings", nil)
}

func (c *Client) SampleCollections(ctx context.Context) ([]model.SampleCollection, error) {
	return query[[]model.SampleCollection](ctx, c, KeyCollections(), "getSampleCollections", nil)
}

// SubmitBooking issues the checkout mutation and returns the booking
// reference. Caches are only invalidated after the gateway confirms.
func (c *Client) SubmitBooking(ctx context.Context, req model.BookingRequest) (string, error) {
	var booking model.Booking
	if err := c.mutate(ctx, "addBooking", req, &booking); err != nil {
		return "", err
	}
	c.cache.Invalidate(KeyAllBookings(), KeyMyBookings())
	logger.Info("Booking submitted",
		zap.String("reference", req.Reference),
		zap.Int("items", len(req.Items)))
	return req.Reference, nil
}
