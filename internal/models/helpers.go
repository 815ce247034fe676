package models

import (
	"gorm.io/gorm"
)

// GetLayerByKey retrieves an enabled layer by its key
func GetLayerByKey(key string, db *gorm.DB) (*Layer, error) {
	layer := &Layer{}
	if err := db.Where("key = ? AND enabled = true AND is_deleted = false", key).First(layer).Error; err != nil {
		return nil, err
	}
	return layer, nil
}

// GetTenantByOwner retrieves the tenant owned by the given user, if any
func GetTenantByOwner(ownerUserID string, db *gorm.DB) (*Tenant, error) {
	tenant := &Tenant{}
	if err := db.Where("owner_user_id = ? AND is_deleted = false", ownerUserID).First(tenant).Error; err != nil {
		return nil, err
	}
	return tenant, nil
}

// GetTenantByID retrieves a tenant by id regardless of status
func GetTenantByID(id string, db *gorm.DB) (*Tenant, error) {
	tenant := &Tenant{}
	if err := db.Where("id = ? AND is_deleted = false", id).First(tenant).Error; err != nil {
		return nil, err
	}
	return tenant, nil
}

// GetUserByID retrieves a user by id
func GetUserByID(id string, db *gorm.DB) (*User, error) {
	user := &User{}
	if err := db.Where("id = ? AND is_deleted = false", id).First(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}
