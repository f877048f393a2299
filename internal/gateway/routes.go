package gateway

import (
	"net/http"

	"petclinic/internal/ports/auth"
)

// Nombres de los servicios downstream.
const (
	ServiceAuth          = "auth"
	ServiceBilling       = "billing"
	ServiceCustomers     = "customers"
	ServiceVets          = "vets"
	ServiceInventory     = "inventory"
	ServiceProducts      = "products"
	ServiceCarts         = "carts"
	ServiceNotifications = "notifications"
)

// Route describe un endpoint del gateway y a dónde se reenvía.
type Route struct {
	Method  string
	Path    string // patrón chi relativo a /api/v2/gateway
	Service string
	// Target es el path downstream; {param} se reemplaza con el valor del path del gateway.
	// Vacío => igual a Path.
	Target string
	// Roles permitidos. Vacío en una ruta no pública => cualquier usuario autenticado.
	Roles  []string
	Public bool
	// UserParam: path param que debe coincidir con el user id del token (salvo ADMIN).
	UserParam string
}

func (rt Route) target() string {
	if rt.Target == "" {
		return rt.Path
	}
	return rt.Target
}

func pub(method, path, service string) Route {
	return Route{Method: method, Path: path, Service: service, Public: true}
}

func sec(method, path, service string, roles []string) Route {
	return Route{Method: method, Path: path, Service: service, Roles: roles}
}

func (rt Route) to(target string) Route {
	rt.Target = target
	return rt
}

func (rt Route) self(param string) Route {
	rt.UserParam = param
	return rt
}

var (
	anyUser    []string
	adminOnly  = []string{auth.RoleAdmin}
	staff      = []string{auth.RoleAdmin, auth.RoleVet}
	owners     = []string{auth.RoleAdmin, auth.RoleOwner}
	stockStaff = []string{auth.RoleAdmin, auth.RoleInventoryManager}
)

const (
	get   = http.MethodGet
	post  = http.MethodPost
	put   = http.MethodPut
	patch = http.MethodPatch
	del   = http.MethodDelete
)

// DefaultRoutes es la tabla de reenvío. Register y los overviews se agregan aparte.
func DefaultRoutes() []Route {
	return []Route{
		// auth
		pub(post, "/users/login", ServiceAuth),
		pub(post, "/users/logout", ServiceAuth),
		sec(get, "/users", ServiceAuth, adminOnly),
		sec(get, "/users/{userId}", ServiceAuth, anyUser).self("userId"),
		sec(del, "/users/{userId}", ServiceAuth, adminOnly),
		sec(patch, "/users/{userId}/disable", ServiceAuth, adminOnly),
		sec(patch, "/users/{userId}/enable", ServiceAuth, adminOnly),
		sec(patch, "/users/{userId}/roles", ServiceAuth, adminOnly),
		sec(get, "/roles", ServiceAuth, adminOnly),
		sec(post, "/roles", ServiceAuth, adminOnly),

		// customers
		sec(get, "/owners", ServiceCustomers, staff),
		sec(post, "/owners", ServiceCustomers, adminOnly),
		sec(get, "/owners/page", ServiceCustomers, staff),
		sec(get, "/owners/count", ServiceCustomers, staff),
		sec(get, "/owners/{ownerId}", ServiceCustomers, owners).self("ownerId"),
		sec(put, "/owners/{ownerId}", ServiceCustomers, owners).self("ownerId"),
		sec(del, "/owners/{ownerId}", ServiceCustomers, adminOnly),
		sec(get, "/owners/{ownerId}/pets", ServiceCustomers, owners).self("ownerId"),
		sec(post, "/owners/{ownerId}/pets", ServiceCustomers, owners).self("ownerId"),
		// customers responde 404 si la mascota no es de {ownerId}
		sec(get, "/owners/{ownerId}/pets/{petId}", ServiceCustomers, owners).self("ownerId"),
		sec(put, "/owners/{ownerId}/pets/{petId}", ServiceCustomers, owners).self("ownerId"),
		sec(del, "/owners/{ownerId}/pets/{petId}", ServiceCustomers, owners).self("ownerId"),
		sec(put, "/owners/{ownerId}/pets/{petId}/photo", ServiceCustomers, owners).self("ownerId"),
		sec(get, "/pets", ServiceCustomers, staff),
		sec(get, "/pets/{petId}", ServiceCustomers, anyUser),
		sec(put, "/pets/{petId}", ServiceCustomers, adminOnly),
		sec(del, "/pets/{petId}", ServiceCustomers, adminOnly),
		sec(patch, "/pets/{petId}/active", ServiceCustomers, staff),
		sec(get, "/pets/{petId}/photo", ServiceCustomers, anyUser),
		sec(put, "/pets/{petId}/photo", ServiceCustomers, adminOnly),
		sec(get, "/pettypes", ServiceCustomers, anyUser),
		sec(post, "/pettypes", ServiceCustomers, adminOnly),
		sec(get, "/pettypes/{petTypeId}", ServiceCustomers, anyUser),
		sec(put, "/pettypes/{petTypeId}", ServiceCustomers, adminOnly),
		sec(del, "/pettypes/{petTypeId}", ServiceCustomers, adminOnly),

		// vets
		sec(get, "/vets", ServiceVets, anyUser),
		sec(post, "/vets", ServiceVets, adminOnly),
		sec(get, "/vets/active", ServiceVets, anyUser),
		sec(get, "/vets/inactive", ServiceVets, staff),
		sec(get, "/vets/topVets", ServiceVets, anyUser),
		sec(get, "/vets/{vetId}", ServiceVets, anyUser),
		sec(put, "/vets/{vetId}", ServiceVets, adminOnly),
		sec(del, "/vets/{vetId}", ServiceVets, adminOnly),
		sec(get, "/vets/{vetId}/ratings", ServiceVets, anyUser),
		sec(post, "/vets/{vetId}/ratings", ServiceVets, owners),
		sec(get, "/vets/{vetId}/ratings/count", ServiceVets, anyUser),
		sec(get, "/vets/{vetId}/ratings/average", ServiceVets, anyUser),
		sec(put, "/vets/{vetId}/ratings/{ratingId}", ServiceVets, owners),
		sec(del, "/vets/{vetId}/ratings/{ratingId}", ServiceVets, owners),

		// billing (staff)
		sec(get, "/bills", ServiceBilling, staff),
		sec(post, "/bills", ServiceBilling, staff),
		sec(del, "/bills", ServiceBilling, adminOnly),
		sec(get, "/bills/page", ServiceBilling, staff),
		sec(get, "/bills/count", ServiceBilling, staff),
		sec(get, "/bills/paid", ServiceBilling, staff),
		sec(get, "/bills/unpaid", ServiceBilling, staff),
		sec(get, "/bills/overdue", ServiceBilling, staff),
		sec(get, "/bills/month", ServiceBilling, staff),
		sec(patch, "/bills/archive", ServiceBilling, adminOnly),
		sec(get, "/bills/owner/{firstName}/{lastName}", ServiceBilling, staff),
		sec(get, "/bills/vet/name/{firstName}/{lastName}", ServiceBilling, staff),
		sec(get, "/bills/vet/{vetId}", ServiceBilling, staff),
		sec(del, "/bills/vet/{vetId}", ServiceBilling, adminOnly),
		sec(get, "/bills/visitType/{visitType}", ServiceBilling, staff),
		sec(del, "/bills/customer/{customerId}", ServiceBilling, adminOnly),
		sec(get, "/bills/{billId}", ServiceBilling, staff),
		sec(put, "/bills/{billId}", ServiceBilling, staff),
		sec(del, "/bills/{billId}", ServiceBilling, adminOnly),
		sec(patch, "/bills/{billId}/exempt", ServiceBilling, adminOnly),
		sec(get, "/bills/{billId}/interest", ServiceBilling, anyUser),
		sec(get, "/bills/{billId}/total", ServiceBilling, anyUser),

		// billing (cliente)
		sec(get, "/customers/{customerId}/bills", ServiceBilling, owners).
			to("/bills/customer/{customerId}/bills").self("customerId"),
		sec(get, "/customers/{customerId}/bills/current-balance", ServiceBilling, owners).
			to("/bills/customer/{customerId}/bills/current-balance").self("customerId"),
		sec(post, "/customers/{customerId}/bills/{billId}/pay", ServiceBilling, owners).
			to("/bills/customer/{customerId}/bills/{billId}/pay").self("customerId"),
		sec(get, "/customers/{customerId}/bills/filter-by-amount", ServiceBilling, owners).
			to("/bills/customer/{customerId}/bills/filter-by-amount").self("customerId"),
		sec(get, "/customers/{customerId}/bills/filter-by-due-date", ServiceBilling, owners).
			to("/bills/customer/{customerId}/bills/filter-by-due-date").self("customerId"),
		sec(get, "/customers/{customerId}/bills/filter-by-date", ServiceBilling, owners).
			to("/bills/customer/{customerId}/bills/filter-by-date").self("customerId"),

		// inventory
		sec(get, "/inventory", ServiceInventory, stockStaff),
		sec(post, "/inventory", ServiceInventory, stockStaff),
		sec(del, "/inventory", ServiceInventory, adminOnly),
		sec(get, "/inventory/page", ServiceInventory, stockStaff),
		sec(get, "/inventory/types", ServiceInventory, stockStaff),
		sec(post, "/inventory/types", ServiceInventory, stockStaff),
		sec(get, "/inventory/types/names", ServiceInventory, stockStaff),
		sec(get, "/inventory/{inventoryId}", ServiceInventory, stockStaff),
		sec(put, "/inventory/{inventoryId}", ServiceInventory, stockStaff),
		sec(del, "/inventory/{inventoryId}", ServiceInventory, stockStaff),
		sec(patch, "/inventory/{inventoryId}/important", ServiceInventory, stockStaff),
		sec(get, "/inventory/{inventoryId}/productquantity", ServiceInventory, stockStaff),
		sec(get, "/inventory/{inventoryId}/products", ServiceInventory, stockStaff),
		sec(post, "/inventory/{inventoryId}/products", ServiceInventory, stockStaff),
		sec(del, "/inventory/{inventoryId}/products", ServiceInventory, stockStaff),
		sec(get, "/inventory/{inventoryId}/products/search", ServiceInventory, stockStaff),
		sec(get, "/inventory/{inventoryId}/products/lowstock", ServiceInventory, stockStaff),
		sec(get, "/inventory/{inventoryId}/products/recent-updates", ServiceInventory, stockStaff),
		sec(get, "/inventory/{inventoryId}/products/{productId}", ServiceInventory, stockStaff),
		sec(put, "/inventory/{inventoryId}/products/{productId}", ServiceInventory, stockStaff),
		sec(del, "/inventory/{inventoryId}/products/{productId}", ServiceInventory, stockStaff),
		sec(patch, "/inventory/{inventoryId}/products/{productId}/consume", ServiceInventory, stockStaff),
		sec(patch, "/inventory/{inventoryId}/products/{productId}/restock", ServiceInventory, stockStaff),
		sec(put, "/inventory/{inventoryId}/products/{productId}/move/{newInventoryId}", ServiceInventory, stockStaff),

		// products
		pub(get, "/products", ServiceProducts),
		sec(post, "/products", ServiceProducts, stockStaff),
		pub(get, "/products/type/{productType}", ServiceProducts),
		sec(get, "/products/subscriptions/{customerId}", ServiceProducts, owners).self("customerId"),
		pub(get, "/products/bundles", ServiceProducts),
		sec(post, "/products/bundles", ServiceProducts, stockStaff),
		sec(del, "/products/bundles/product/{productId}", ServiceProducts, stockStaff),
		pub(get, "/products/bundles/{bundleId}", ServiceProducts),
		sec(put, "/products/bundles/{bundleId}", ServiceProducts, stockStaff),
		sec(del, "/products/bundles/{bundleId}", ServiceProducts, stockStaff),
		pub(get, "/products/{productId}", ServiceProducts),
		pub(patch, "/products/{productId}", ServiceProducts),
		sec(put, "/products/{productId}", ServiceProducts, stockStaff),
		sec(del, "/products/{productId}", ServiceProducts, stockStaff),
		sec(patch, "/products/{productId}/status", ServiceProducts, stockStaff),
		sec(patch, "/products/{productId}/decrease", ServiceProducts, stockStaff),
		sec(patch, "/products/{productId}/quantity", ServiceProducts, stockStaff),
		sec(get, "/products/{productId}/subscriptions/{customerId}", ServiceProducts, owners).self("customerId"),
		sec(post, "/products/{productId}/subscriptions/{customerId}", ServiceProducts, owners).self("customerId"),
		sec(put, "/products/{productId}/subscriptions/{customerId}", ServiceProducts, owners).self("customerId"),
		sec(del, "/products/{productId}/subscriptions/{customerId}", ServiceProducts, owners).self("customerId"),
		pub(get, "/ratings/{productId}", ServiceProducts),
		sec(get, "/ratings/{productId}/{customerId}", ServiceProducts, owners).self("customerId"),
		sec(post, "/ratings/{productId}/{customerId}", ServiceProducts, owners).self("customerId"),
		sec(put, "/ratings/{productId}/{customerId}", ServiceProducts, owners).self("customerId"),
		sec(del, "/ratings/{productId}/{customerId}", ServiceProducts, owners).self("customerId"),

		// carts
		sec(get, "/carts", ServiceCarts, adminOnly),
		sec(post, "/carts/customer/{customerId}/assign", ServiceCarts, owners).self("customerId"),
		sec(get, "/carts/customer/{customerId}", ServiceCarts, owners).self("customerId"),
		sec(get, "/carts/{cartId}", ServiceCarts, owners),
		sec(del, "/carts/{cartId}", ServiceCarts, owners),
		sec(del, "/carts/{cartId}/clear", ServiceCarts, owners),
		sec(post, "/carts/{cartId}/products/{productId}", ServiceCarts, owners),
		sec(put, "/carts/{cartId}/products/{productId}", ServiceCarts, owners),
		sec(del, "/carts/{cartId}/products/{productId}", ServiceCarts, owners),
		sec(put, "/carts/{cartId}/wishlist/{productId}", ServiceCarts, owners),
		sec(del, "/carts/{cartId}/wishlist/{productId}", ServiceCarts, owners),
		sec(post, "/carts/{cartId}/wishlist/moveAll", ServiceCarts, owners),
		sec(post, "/carts/{cartId}/checkout", ServiceCarts, owners),
		sec(put, "/carts/{cartId}/promo", ServiceCarts, owners),
		sec(get, "/promos", ServiceCarts, adminOnly),
		sec(post, "/promos", ServiceCarts, adminOnly),
		sec(get, "/promos/active", ServiceCarts, anyUser),
		sec(get, "/promos/{promoId}", ServiceCarts, adminOnly),
		sec(put, "/promos/{promoId}", ServiceCarts, adminOnly),
		sec(del, "/promos/{promoId}", ServiceCarts, adminOnly),

		// notifications
		sec(get, "/notifications", ServiceNotifications, adminOnly),
		sec(post, "/notifications", ServiceNotifications, adminOnly),
		sec(get, "/notifications/{notificationId}", ServiceNotifications, anyUser),
		sec(patch, "/notifications/{notificationId}/read", ServiceNotifications, anyUser),
		sec(del, "/notifications/{notificationId}", ServiceNotifications, adminOnly),
	}
}
