package mockapi

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pharmadash/pharmadash/internal/api"
	"golang.org/x/crypto/bcrypt"
)

// Store holds the in-memory state of the development server. All access goes
// through its methods; the mutex serializes mutation against chi's concurrent
// handlers.
type Store struct {
	mu sync.RWMutex

	users     []storedUser
	medicines []api.Medicine
	batches   map[int][]api.Batch // medicineID -> batches
	alerts    []api.Alert
	suppliers []api.Supplier
	purchases []api.PurchaseOrder
	orders    []api.PrescriptionOrder

	nextUserID     int
	nextMedicineID int
	nextBatchID    int
	nextAlertID    int
	nextSupplierID int
	nextPurchaseID int
	nextOrderID    int
	nextTxID       int
}

type storedUser struct {
	api.User
	passwordHash []byte
}

// NewStore builds a store seeded with a small but realistic catalog, so the
// dashboard renders meaningful figures without any setup.
func NewStore() *Store {
	s := &Store{
		batches:        make(map[int][]api.Batch),
		nextUserID:     1,
		nextMedicineID: 1,
		nextBatchID:    1,
		nextAlertID:    1,
		nextSupplierID: 1,
		nextPurchaseID: 1,
		nextOrderID:    1,
		nextTxID:       1,
	}
	s.seed()
	return s
}

func (s *Store) seed() {
	s.addUser("admin@pharmacy.local", "Admin User", "admin", "admin123")

	now := time.Now()

	para := s.addMedicine(api.Medicine{
		SKU: "MED001", Name: "Paracetamol 500mg", Category: "Analgesic",
		Manufacturer: "Cipla", Brand: "Crocin", MRP: 30.0, Cost: 18.0,
		Schedule: "OTC", IsActive: true,
	})
	azi := s.addMedicine(api.Medicine{
		SKU: "MED002", Name: "Azithromycin 500mg", Category: "Antibiotic",
		Manufacturer: "Pfizer", Brand: "Zithromax", MRP: 120.0, Cost: 85.0,
		Schedule: "H", IsActive: true,
	})
	met := s.addMedicine(api.Medicine{
		SKU: "MED003", Name: "Metformin 500mg", Category: "Antidiabetic",
		Manufacturer: "Sun Pharma", Brand: "Glycomet", MRP: 45.0, Cost: 28.0,
		Schedule: "H", IsActive: true,
	})

	s.addBatch(para.ID, api.Batch{BatchNumber: "B2401", Quantity: 480, ExpiryDate: now.AddDate(1, 0, 0)})
	s.addBatch(para.ID, api.Batch{BatchNumber: "B2402", Quantity: 120, ExpiryDate: now.AddDate(0, 1, 0)})
	s.addBatch(azi.ID, api.Batch{BatchNumber: "B2403", Quantity: 60, ExpiryDate: now.AddDate(0, 0, 20)})
	s.addBatch(met.ID, api.Batch{BatchNumber: "B2404", Quantity: 15, ExpiryDate: now.AddDate(2, 0, 0)})
	s.addBatch(met.ID, api.Batch{BatchNumber: "B2398", Quantity: 40, ExpiryDate: now.AddDate(0, 0, -10), IsExpired: true})

	s.addAlert(api.Alert{
		AlertType: "low_stock", MedicineID: met.ID, Severity: "critical",
		Message: "Metformin 500mg stock below reorder point (15 units)",
	})
	s.addAlert(api.Alert{
		AlertType: "expiry", MedicineID: azi.ID, Severity: "warning",
		Message: "Azithromycin 500mg batch B2403 expires in 20 days",
	})

	s.suppliers = append(s.suppliers, api.Supplier{
		ID: s.nextSupplierID, Name: "MedSupply Co",
		ContactPerson: "Ravi Kumar", Email: "orders@medsupply.example",
		Phone: "+91-9800000001", LeadTimeDays: 5, IsActive: true,
	})
	s.nextSupplierID++
	s.suppliers = append(s.suppliers, api.Supplier{
		ID: s.nextSupplierID, Name: "PharmaDirect Wholesale",
		Email: "sales@pharmadirect.example", LeadTimeDays: 3, IsActive: true,
	})
	s.nextSupplierID++
}

func (s *Store) addUser(email, fullName, role, password string) storedUser {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	u := storedUser{
		User: api.User{
			ID: s.nextUserID, Email: email, FullName: fullName,
			Role: role, IsActive: true,
		},
		passwordHash: hash,
	}
	s.users = append(s.users, u)
	s.nextUserID++
	return u
}

func (s *Store) addMedicine(m api.Medicine) api.Medicine {
	m.ID = s.nextMedicineID
	s.nextMedicineID++
	s.medicines = append(s.medicines, m)
	return m
}

func (s *Store) addBatch(medicineID int, b api.Batch) api.Batch {
	b.ID = s.nextBatchID
	s.nextBatchID++
	s.batches[medicineID] = append(s.batches[medicineID], b)
	return b
}

func (s *Store) addAlert(a api.Alert) api.Alert {
	a.ID = s.nextAlertID
	a.CreatedAt = time.Now()
	s.nextAlertID++
	s.alerts = append(s.alerts, a)
	return a
}

// Authenticate checks credentials and returns the matching user.
func (s *Store) Authenticate(email, password string) (api.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) && u.IsActive {
			if bcrypt.CompareHashAndPassword(u.passwordHash, []byte(password)) == nil {
				return u.User, true
			}
			return api.User{}, false
		}
	}
	return api.User{}, false
}

// UserByEmail looks up an active user.
func (s *Store) UserByEmail(email string) (api.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u.User, true
		}
	}
	return api.User{}, false
}

// CreateUser registers a new user. Duplicate emails are rejected.
func (s *Store) CreateUser(req api.UserCreate) (api.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, req.Email) {
			return api.User{}, false
		}
	}
	s.addUser(req.Email, req.FullName, req.Role, req.Password)
	s.users[len(s.users)-1].Phone = req.Phone
	return s.users[len(s.users)-1].User, true
}

// Medicines lists the catalog filtered by category and search term.
func (s *Store) Medicines(category, search string) []api.Medicine {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]api.Medicine, 0, len(s.medicines))
	for _, m := range s.medicines {
		if category != "" && !strings.EqualFold(m.Category, category) {
			continue
		}
		if search != "" {
			needle := strings.ToLower(search)
			if !strings.Contains(strings.ToLower(m.Name), needle) &&
				!strings.Contains(strings.ToLower(m.SKU), needle) {
				continue
			}
		}
		out = append(out, m)
	}
	return out
}

// Categories returns the distinct catalog categories, sorted. Medicines
// without a category do not contribute.
func (s *Store) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool, len(s.medicines))
	out := []string{}
	for _, m := range s.medicines {
		if m.Category == "" || seen[m.Category] {
			continue
		}
		seen[m.Category] = true
		out = append(out, m.Category)
	}
	sort.Strings(out)
	return out
}

// Medicine fetches one medicine by ID.
func (s *Store) Medicine(id int) (api.Medicine, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.medicines {
		if m.ID == id {
			return m, true
		}
	}
	return api.Medicine{}, false
}

// Batches returns the batches of a medicine.
func (s *Store) Batches(medicineID int) []api.Batch {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]api.Batch(nil), s.batches[medicineID]...)
}

// StockLevels aggregates sellable quantity per medicine. Expired and damaged
// batches do not count toward sellable stock.
func (s *Store) StockLevels(lowStockOnly bool) []api.StockLevel {
	s.mu.RLock()
	defer s.mu.RUnlock()

	const lowStockThreshold = 50

	out := make([]api.StockLevel, 0, len(s.medicines))
	for _, m := range s.medicines {
		level := api.StockLevel{MedicineID: m.ID, SKU: m.SKU, Name: m.Name, Category: m.Category}
		var nearest time.Time
		for _, b := range s.batches[m.ID] {
			if b.IsExpired || b.IsDamaged {
				continue
			}
			level.TotalQuantity += b.Quantity
			if nearest.IsZero() || b.ExpiryDate.Before(nearest) {
				nearest = b.ExpiryDate
			}
		}
		if !nearest.IsZero() {
			level.NearestExpiry = nearest.Format("2006-01-02")
		}
		if lowStockOnly && level.TotalQuantity >= lowStockThreshold {
			continue
		}
		out = append(out, level)
	}
	return out
}

// ImportMedicines merges uploaded rows into the catalog, matching by SKU.
func (s *Store) ImportMedicines(rows []api.Medicine) api.UploadResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := api.UploadResult{
		TotalRows: len(rows),
		Errors:    []string{},
		Warnings:  []string{},
	}
	for i, row := range rows {
		if row.SKU == "" || row.Name == "" {
			result.ErrorCount++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: missing sku or name", i+1))
			continue
		}
		updated := false
		for j, m := range s.medicines {
			if m.SKU == row.SKU {
				row.ID = m.ID
				s.medicines[j] = row
				updated = true
				break
			}
		}
		if !updated {
			s.addMedicine(row)
		} else {
			result.WarningCount++
			result.Warnings = append(result.Warnings, fmt.Sprintf("row %d: updated existing sku %s", i+1, row.SKU))
		}
		result.SuccessCount++
	}
	return result
}

// nextTransactionID allocates a transaction ID. Transactions are acknowledged
// but not replayed anywhere, so only the counter is kept.
func (s *Store) nextTransactionID() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextTxID
	s.nextTxID++
	return id
}

// Alerts returns alerts matching the filter.
func (s *Store) Alerts(alertType, severity string, acknowledged *bool) []api.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]api.Alert, 0, len(s.alerts))
	for _, a := range s.alerts {
		if alertType != "" && a.AlertType != alertType {
			continue
		}
		if severity != "" && a.Severity != severity {
			continue
		}
		if acknowledged != nil && a.IsAcknowledged != *acknowledged {
			continue
		}
		out = append(out, a)
	}
	return out
}

// AcknowledgeAlert marks an alert as seen. Acknowledging twice is a no-op
// success returning the already-acknowledged alert.
func (s *Store) AcknowledgeAlert(id int) (api.Alert, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, a := range s.alerts {
		if a.ID == id {
			s.alerts[i].IsAcknowledged = true
			return s.alerts[i], true
		}
	}
	return api.Alert{}, false
}

// AlertStats aggregates alert counts by type and severity.
func (s *Store) AlertStats() api.AlertStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := api.AlertStats{
		ByType:     make(map[string]int),
		BySeverity: make(map[string]int),
	}
	for _, a := range s.alerts {
		stats.TotalAlerts++
		if !a.IsAcknowledged {
			stats.Unacknowledged++
		}
		stats.ByType[a.AlertType]++
		stats.BySeverity[a.Severity]++
	}
	return stats
}

// ScanForAlerts re-derives low-stock alerts from current stock, skipping
// medicines that already carry an open one. Returns how many were raised.
func (s *Store) ScanForAlerts() int {
	levels := s.StockLevels(true)

	s.mu.Lock()
	defer s.mu.Unlock()

	open := make(map[int]bool)
	for _, a := range s.alerts {
		if a.AlertType == "low_stock" && !a.IsAcknowledged {
			open[a.MedicineID] = true
		}
	}

	created := 0
	for _, level := range levels {
		if open[level.MedicineID] {
			continue
		}
		s.addAlert(api.Alert{
			AlertType:  "low_stock",
			MedicineID: level.MedicineID,
			Severity:   "warning",
			Message:    fmt.Sprintf("%s stock is low (%d units)", level.Name, level.TotalQuantity),
		})
		created++
	}
	return created
}

// Suppliers lists suppliers, optionally active only.
func (s *Store) Suppliers(activeOnly bool) []api.Supplier {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]api.Supplier, 0, len(s.suppliers))
	for _, sup := range s.suppliers {
		if activeOnly && !sup.IsActive {
			continue
		}
		out = append(out, sup)
	}
	return out
}

// Supplier fetches one supplier by ID.
func (s *Store) Supplier(id int) (api.Supplier, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sup := range s.suppliers {
		if sup.ID == id {
			return sup, true
		}
	}
	return api.Supplier{}, false
}

// CreateSupplier adds a supplier.
func (s *Store) CreateSupplier(req api.SupplierCreate) api.Supplier {
	s.mu.Lock()
	defer s.mu.Unlock()

	sup := api.Supplier{
		ID: s.nextSupplierID, Name: req.Name, ContactPerson: req.ContactPerson,
		Email: req.Email, Phone: req.Phone, Address: req.Address,
		LeadTimeDays: req.LeadTimeDays, IsActive: true,
	}
	s.nextSupplierID++
	s.suppliers = append(s.suppliers, sup)
	return sup
}

// UpdateSupplier replaces a supplier's fields.
func (s *Store) UpdateSupplier(id int, req api.SupplierCreate) (api.Supplier, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sup := range s.suppliers {
		if sup.ID == id {
			sup.Name = req.Name
			sup.ContactPerson = req.ContactPerson
			sup.Email = req.Email
			sup.Phone = req.Phone
			sup.Address = req.Address
			sup.LeadTimeDays = req.LeadTimeDays
			s.suppliers[i] = sup
			return sup, true
		}
	}
	return api.Supplier{}, false
}

// DeleteSupplier deactivates a supplier. Suppliers with order history are
// never hard-deleted.
func (s *Store) DeleteSupplier(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sup := range s.suppliers {
		if sup.ID == id {
			s.suppliers[i].IsActive = false
			return true
		}
	}
	return false
}

// CreatePurchaseOrder places an order and prices it from the catalog.
func (s *Store) CreatePurchaseOrder(req api.PurchaseOrderCreate) (api.PurchaseOrder, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for _, sup := range s.suppliers {
		if sup.ID == req.SupplierID && sup.IsActive {
			found = true
			break
		}
	}
	if !found {
		return api.PurchaseOrder{}, false
	}

	var total float64
	for _, item := range req.Items {
		cost := item.UnitCost
		if cost == 0 {
			for _, m := range s.medicines {
				if m.ID == item.MedicineID {
					cost = m.Cost
					break
				}
			}
		}
		total += cost * float64(item.Quantity)
	}

	po := api.PurchaseOrder{
		ID: s.nextPurchaseID, SupplierID: req.SupplierID,
		Status: "pending", TotalCost: total, CreatedAt: time.Now(),
	}
	s.nextPurchaseID++
	s.purchases = append(s.purchases, po)
	return po, true
}

// PurchaseOrders lists orders, optionally by supplier or status.
func (s *Store) PurchaseOrders(supplierID int, status string) []api.PurchaseOrder {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]api.PurchaseOrder, 0, len(s.purchases))
	for _, po := range s.purchases {
		if supplierID != 0 && po.SupplierID != supplierID {
			continue
		}
		if status != "" && po.Status != status {
			continue
		}
		out = append(out, po)
	}
	return out
}

// CreateOrder places a customer prescription order.
func (s *Store) CreateOrder(req api.PrescriptionOrderCreate) api.PrescriptionOrder {
	s.mu.Lock()
	defer s.mu.Unlock()

	order := api.PrescriptionOrder{
		ID: s.nextOrderID, CustomerName: req.CustomerName,
		ContactInfo: req.ContactInfo, NotificationMethod: req.NotificationMethod,
		Status:    "received",
		Message:   "Order received. Customer will be notified via " + req.NotificationMethod + ".",
		CreatedAt: time.Now(),
	}
	s.nextOrderID++
	s.orders = append(s.orders, order)
	return order
}

// Orders returns all orders, newest first.
func (s *Store) Orders() []api.PrescriptionOrder {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := append([]api.PrescriptionOrder(nil), s.orders...)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// MarkBatch flags a batch as expired or damaged and raises a matching alert.
func (s *Store) MarkBatch(batchID int, status string) (api.Medicine, api.Batch, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for medicineID, batches := range s.batches {
		for i, b := range batches {
			if b.ID != batchID {
				continue
			}
			switch status {
			case "expired":
				batches[i].IsExpired = true
			case "damaged":
				batches[i].IsDamaged = true
			}
			var med api.Medicine
			for _, m := range s.medicines {
				if m.ID == medicineID {
					med = m
					break
				}
			}
			s.addAlert(api.Alert{
				AlertType: status, MedicineID: medicineID, BatchID: batchID,
				Severity: "warning",
				Message:  med.Name + " batch " + b.BatchNumber + " marked " + status,
			})
			return med, batches[i], true
		}
	}
	return api.Medicine{}, api.Batch{}, false
}
