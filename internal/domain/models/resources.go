package models

type InventoryItem struct {
	ItemID       string  `json:"item_id"`
	ItemName     string  `json:"item_name"`
	Category     string  `json:"category"`
	CurrentStock float64 `json:"current_stock"`
	MinimumStock float64 `json:"minimum_stock"`
	Unit         string  `json:"unit"`
	UnitPrice    float64 `json:"unit_price"`
}

// LowStock is derived, never stored.
func (i InventoryItem) LowStock() bool {
	return i.CurrentStock < i.MinimumStock
}

type StaffMember struct {
	Name       string  `json:"name"`
	Role       string  `json:"role"`
	Department string  `json:"department"`
	Shift      string  `json:"shift"`
	DaysOfWeek string  `json:"days_of_week"`
	HourlyRate float64 `json:"hourly_rate"`
	Status     string  `json:"status"`
}

type DepartmentInfo struct {
	DepartmentName   string `json:"department_name"`
	TotalBeds        int    `json:"total_beds"`
	ICUBeds          int    `json:"icu_beds"`
	HeadOfDepartment string `json:"head_of_department"`
	Floor            string `json:"floor"`
	Contact          string `json:"contact"`
}

// ResourcesView bundles the resource tabs.
type ResourcesView struct {
	Inventory   []InventoryItem  `json:"inventory"`
	LowStock    []InventoryItem  `json:"low_stock"`
	Staff       []StaffMember    `json:"staff"`
	Departments []DepartmentInfo `json:"departments"`
	TotalBeds   int              `json:"total_beds"`
	TotalICU    int              `json:"total_icu_beds"`
	Warnings    []string         `json:"warnings,omitempty"`
	DataSource  DataSource       `json:"data_source"`
}
