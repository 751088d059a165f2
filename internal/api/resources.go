package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// Page is the DRF pagination envelope around list responses.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// Collection is a typed CRUD wrapper over one REST resource under the
// API prefix. Every gym resource exposes the same verb surface, so the
// per-resource services are instances of this one type.
type Collection[T any] struct {
	client *Client
	name   string
}

// NewCollection binds a collection to a resource name, e.g. "socios".
func NewCollection[T any](c *Client, name string) Collection[T] {
	return Collection[T]{client: c, name: name}
}

// List fetches one page of records. Query params pass through to the
// backend (page, search, ordering, and the resource's filter fields).
func (r Collection[T]) List(ctx context.Context, query url.Values) (Page[T], error) {
	var page Page[T]
	if err := r.client.get(ctx, r.client.resource(r.name), query, &page); err != nil {
		return Page[T]{}, fmt.Errorf("list %s: %w", r.name, err)
	}
	return page, nil
}

// Get fetches a single record by id.
func (r Collection[T]) Get(ctx context.Context, id int64) (T, error) {
	var out T
	if err := r.client.get(ctx, r.item(id), nil, &out); err != nil {
		return out, fmt.Errorf("get %s %d: %w", r.name, id, err)
	}
	return out, nil
}

// Create posts a new record and returns the server-assigned one.
func (r Collection[T]) Create(ctx context.Context, in any) (T, error) {
	var out T
	if err := r.client.post(ctx, r.client.resource(r.name), in, &out); err != nil {
		return out, fmt.Errorf("create %s: %w", r.name, err)
	}
	return out, nil
}

// Update replaces a record.
func (r Collection[T]) Update(ctx context.Context, id int64, in any) (T, error) {
	var out T
	if err := r.client.put(ctx, r.item(id), in, &out); err != nil {
		return out, fmt.Errorf("update %s %d: %w", r.name, id, err)
	}
	return out, nil
}

// Patch partially updates a record.
func (r Collection[T]) Patch(ctx context.Context, id int64, in any) (T, error) {
	var out T
	if err := r.client.patch(ctx, r.item(id), in, &out); err != nil {
		return out, fmt.Errorf("patch %s %d: %w", r.name, id, err)
	}
	return out, nil
}

// Delete removes a record.
func (r Collection[T]) Delete(ctx context.Context, id int64) error {
	if err := r.client.del(ctx, r.item(id)); err != nil {
		return fmt.Errorf("delete %s %d: %w", r.name, id, err)
	}
	return nil
}

func (r Collection[T]) item(id int64) string {
	return r.client.resource(r.name) + strconv.FormatInt(id, 10) + "/"
}

// SearchQuery builds the standard list query for the backend's search
// and pagination backends.
func SearchQuery(page int, search string) url.Values {
	q := url.Values{}
	if page > 1 {
		q.Set("page", strconv.Itoa(page))
	}
	if search != "" {
		q.Set("search", search)
	}
	return q
}

// Member is a gym member record. Monetary and date-only fields keep the
// backend's string representations.
type Member struct {
	ID           int64     `json:"socio_id"`
	Name         string    `json:"nombre"`
	Phone        string    `json:"telefono"`
	Email        string    `json:"correo"`
	MembershipID int64     `json:"membresia"`
	RegisteredAt time.Time `json:"fecha_registro"`
}

// MembershipPlan is a purchasable membership tier.
type MembershipPlan struct {
	ID             int64  `json:"membresia_id"`
	Kind           string `json:"tipo"`
	Description    string `json:"descripcion"`
	MonthlyPrice   string `json:"precio_mensual"`
	DurationMonths int    `json:"duracion_meses"`
}

// Trainer is a class instructor.
type Trainer struct {
	ID        int64  `json:"entrenador_id"`
	Name      string `json:"nombre"`
	Specialty string `json:"especialidad"`
	Phone     string `json:"telefono"`
	Email     string `json:"correo"`
}

// GymClass is a scheduled class with a trainer and a capacity cap.
type GymClass struct {
	ID          int64     `json:"clase_id"`
	Name        string    `json:"nombre"`
	TrainerID   int64     `json:"entrenador"`
	Schedule    time.Time `json:"horario"`
	MaxCapacity int       `json:"capacidad_max"`
}

// Payment is a recorded member payment.
type Payment struct {
	ID       int64     `json:"pago_id"`
	MemberID int64     `json:"socio"`
	Amount   string    `json:"monto"`
	PaidAt   time.Time `json:"fecha_pago"`
	Method   string    `json:"metodo"`
}

// Attendance is a gym visit; CheckedOutAt is nil while the member is
// still inside.
type Attendance struct {
	ID           int64      `json:"asistencia_id"`
	MemberID     int64      `json:"socio"`
	CheckedInAt  time.Time  `json:"fecha_entrada"`
	CheckedOutAt *time.Time `json:"fecha_salida"`
}

// Enrollment links a member to a class.
type Enrollment struct {
	ID         int64     `json:"id"`
	MemberID   int64     `json:"socio"`
	ClassID    int64     `json:"clase"`
	EnrolledAt time.Time `json:"fecha_inscripcion"`
}

// Equipment is a tracked piece of gym equipment. Date-only fields stay
// as "2006-01-02" strings.
type Equipment struct {
	ID              int64  `json:"equipo_id"`
	Name            string `json:"nombre"`
	Description     string `json:"descripcion"`
	AcquiredOn      string `json:"fecha_adquisicion"`
	Status          string `json:"estado"`
	LastMaintenance string `json:"ultima_mantenimiento,omitempty"`
}

// Typed accessors for each backend resource.

func (c *Client) Members() Collection[Member] {
	return NewCollection[Member](c, "socios")
}

func (c *Client) MembershipPlans() Collection[MembershipPlan] {
	return NewCollection[MembershipPlan](c, "membresias")
}

func (c *Client) Trainers() Collection[Trainer] {
	return NewCollection[Trainer](c, "entrenadores")
}

func (c *Client) Classes() Collection[GymClass] {
	return NewCollection[GymClass](c, "clases")
}

func (c *Client) Payments() Collection[Payment] {
	return NewCollection[Payment](c, "pagos")
}

func (c *Client) Attendances() Collection[Attendance] {
	return NewCollection[Attendance](c, "asistencias")
}

func (c *Client) Enrollments() Collection[Enrollment] {
	return NewCollection[Enrollment](c, "socio-clases")
}

func (c *Client) Equipment() Collection[Equipment] {
	return NewCollection[Equipment](c, "equipos")
}
