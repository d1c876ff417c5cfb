// queries/keys.go
package queries

import "github.com/jeevanhealth/shell/cache"

// Cache key constructors, one per gateway query. Parameterized resources
// carry their id as a key component so per-record invalidation stays exact.

func KeyProfile() cache.Key        { return cache.NewKey("currentUserProfile") }
func KeyIsAdmin() cache.Key        { return cache.NewKey("isAdmin") }
func KeyLabExecutive() cache.Key   { return cache.NewKey("hasLabExecutiveCapabilities") }
func KeyPhlebotomist() cache.Key   { return cache.NewKey("hasPhlebotomistRole") }
func KeyDoctor() cache.Key         { return cache.NewKey("hasDoctorRole") }
func KeyServices() cache.Key       { return cache.NewKey("services") }
func KeyAllUsers() cache.Key       { return cache.NewKey("allUsers") }
func KeyAllBookings() cache.Key    { return cache.NewKey("allBookings") }
func KeyMyBookings() cache.Key     { return cache.NewKey("myBookings") }
func KeyCollections() cache.Key    { return cache.NewKey("sampleCollections") }
func KeyAllCustomers() cache.Key   { return cache.NewKey("allCustomers") }
func KeyMyCustomer() cache.Key     { return cache.NewKey("myCustomerProfile") }
func KeyAllPatients() cache.Key    { return cache.NewKey("allPatients") }
func KeyMyPatients() cache.Key     { return cache.NewKey("myPatients") }
func KeyAllVitals() cache.Key      { return cache.NewKey("allVitals") }
func KeyMyFamilyVitals() cache.Key { return cache.NewKey("myFamilyVitals") }
func KeyHealthPackages() cache.Key { return cache.NewKey("activeHealthPackages") }

func KeyCustomer(id string) cache.Key { return cache.NewKey("customer", id) }
func KeyPatient(id string) cache.Key  { return cache.NewKey("patient", id) }
func KeyVital(id string) cache.Key    { return cache.NewKey("vital", id) }

func KeyPatientsByCustomer(customerID string) cache.Key {
	return cache.NewKey("patientsByCustomer", customerID)
}

func KeyVitalsByPatient(patientID string) cache.Key {
	return cache.NewKey("vitalsByPatient", patientID)
}
