package models

import "fmt"

/* enum-like custom types and their validation */

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusActive    OrderStatus = "ACTIVE"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

func (s OrderStatus) IsValid() error {
	switch s {
	case OrderStatusPending, OrderStatusActive, OrderStatusDelivered, OrderStatusCancelled:
		return nil
	}
	return fmt.Errorf("invalid order status: %s", s)
}

// Closed orders accept no further deliveries.
func (s OrderStatus) IsClosed() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

func OrderStatuses() []OrderStatus {
	return []OrderStatus{OrderStatusPending, OrderStatusActive, OrderStatusDelivered, OrderStatusCancelled}
}

type SaleStatus string

const (
	SaleStatusIssued    SaleStatus = "ISSUED"
	SaleStatusPending   SaleStatus = "PENDING"
	SaleStatusCancelled SaleStatus = "CANCELLED"
)

func (s SaleStatus) IsValid() error {
	switch s {
	case SaleStatusIssued, SaleStatusPending, SaleStatusCancelled:
		return nil
	}
	return fmt.Errorf("invalid sale status: %s", s)
}

func SaleStatuses() []SaleStatus {
	return []SaleStatus{SaleStatusIssued, SaleStatusPending, SaleStatusCancelled}
}

type DoseForm string

const (
	DoseFormTablet      DoseForm = "TABLET"
	DoseFormCapsule     DoseForm = "CAPSULE"
	DoseFormSyrup       DoseForm = "SYRUP"
	DoseFormSuspension  DoseForm = "SUSPENSION"
	DoseFormInjection   DoseForm = "INJECTION"
	DoseFormCream       DoseForm = "CREAM"
	DoseFormOintment    DoseForm = "OINTMENT"
	DoseFormDrops       DoseForm = "DROPS"
	DoseFormInhaler     DoseForm = "INHALER"
	DoseFormSuppository DoseForm = "SUPPOSITORY"
)

func (d DoseForm) IsValid() error {
	switch d {
	case DoseFormTablet, DoseFormCapsule, DoseFormSyrup, DoseFormSuspension,
		DoseFormInjection, DoseFormCream, DoseFormOintment, DoseFormDrops,
		DoseFormInhaler, DoseFormSuppository:
		return nil
	}
	return fmt.Errorf("invalid dose form: %s", d)
}

func DoseForms() []DoseForm {
	return []DoseForm{
		DoseFormTablet, DoseFormCapsule, DoseFormSyrup, DoseFormSuspension,
		DoseFormInjection, DoseFormCream, DoseFormOintment, DoseFormDrops,
		DoseFormInhaler, DoseFormSuppository,
	}
}

// MedicineStrengths lists the unit suffixes a strength value must carry.
func MedicineStrengths() []string {
	return []string{"mg", "ml", "g", "mcg", "IU", "%"}
}

type UserRole string

const (
	UserRoleAdmin               UserRole = "ADMIN"
	UserRoleChiefPharmacist     UserRole = "CHIEF_PHARMACIST"
	UserRolePharmacistAssistant UserRole = "PHARMACIST_ASSISTANT"
	UserRolePharmacyTechnician  UserRole = "PHARMACY_TECHNICIAN"
)

func (r UserRole) IsValid() error {
	switch r {
	case UserRoleAdmin, UserRoleChiefPharmacist, UserRolePharmacistAssistant, UserRolePharmacyTechnician:
		return nil
	}
	return fmt.Errorf("invalid user role: %s", r)
}

func UserRoles() []UserRole {
	return []UserRole{UserRoleAdmin, UserRoleChiefPharmacist, UserRolePharmacistAssistant, UserRolePharmacyTechnician}
}
