// Package nav holds the static console navigation tree and derives the
// visible subset for a role without querying the server.
package nav

// Item is one entry in the navigation tree. A leaf has a Key matched
// against the role's module-access set; a group has Children and no Key.
type Item struct {
	Label    string `json:"label"`
	Key      string `json:"key,omitempty"`
	Path     string `json:"path,omitempty"`
	Icon     string `json:"icon,omitempty"`
	Children []Item `json:"children,omitempty"`
}

// IsGroup reports whether the item is a group node.
func (i Item) IsGroup() bool {
	return len(i.Children) > 0
}

// Tree is the static ordered navigation tree for the console. Declared
// order is the render order for every role.
var Tree = []Item{
	{Label: "Dashboard", Key: "dashboard", Path: "/dashboard", Icon: "gauge"},
	{Label: "Inquiries", Key: "inquiries", Path: "/inquiries", Icon: "inbox"},
	{Label: "Clients", Key: "clients", Path: "/clients", Icon: "users"},
	{Label: "Plans", Key: "plans", Path: "/plans", Icon: "layers"},
	{Label: "Billing", Children: []Item{
		{Label: "Payments", Key: "payments", Path: "/payments"},
		{Label: "Invoices", Key: "invoices", Path: "/invoices"},
	}},
	{Label: "Operations", Children: []Item{
		{Label: "Activations", Key: "activations", Path: "/activations"},
		{Label: "Tickets", Key: "tickets", Path: "/tickets"},
		{Label: "Renewals", Key: "renewals", Path: "/renewals"},
	}},
	{Label: "Users & Roles", Children: []Item{
		{Label: "Users", Key: "users", Path: "/users"},
		{Label: "Roles", Key: "roles", Path: "/roles"},
		{Label: "Permissions", Key: "permissions", Path: "/permissions"},
	}},
	{Label: "Reports", Key: "reports", Path: "/reports", Icon: "chart"},
	{Label: "Notifications", Key: "notifications", Path: "/notifications", Icon: "bell"},
	{Label: "Settings", Key: "settings", Path: "/settings", Icon: "cog"},
}
