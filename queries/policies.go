// queries/policies.go
package queries

import (
	"github.com/jeevanhealth/shell/access"
	"github.com/jeevanhealth/shell/model"
)

// Canned access policies for the four dashboards, wired to this client's
// capability probes.

// AdminDashboardPolicy admits the admin role or the lab-executive
// capability. The two grants come from independent probes; neither is
// derived from the other.
func (c *Client) AdminDashboardPolicy() access.Policy {
	return access.Policy{
		Name:          "admin-dashboard",
		RequiredRoles: []model.Role{model.RoleAdmin},
		Probes:        []access.Probe{c.LabExecutiveProbe()},
		FallbackRoute: "/",
	}
}

func (c *Client) DoctorDashboardPolicy() access.Policy {
	return access.Policy{
		Name:          "doctor-dashboard",
		RequiredRoles: []model.Role{model.RoleDoctor},
		Probes:        []access.Probe{c.DoctorProbe()},
		FallbackRoute: "/",
	}
}

func (c *Client) PhlebotomistDashboardPolicy() access.Policy {
	return access.Policy{
		Name:          "phlebotomist-dashboard",
		RequiredRoles: []model.Role{model.RolePhlebotomist},
		Probes:        []access.Probe{c.PhlebotomistProbe()},
		FallbackRoute: "/",
	}
}

// CustomerPortalPolicy admits any authenticated caller with a profile.
func (c *Client) CustomerPortalPolicy() access.Policy {
	return access.Policy{
		Name:          "customer-portal",
		AllowAnyRole:  true,
		FallbackRoute: "/",
	}
}
