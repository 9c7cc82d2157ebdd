package request

import "github.com/netobs/dc-catalog/internal/model"

// CreateDataCenter holds the request body for provisioning a data center.
// Strategy membership is checked against the catalog defaults by the service;
// everything structural is validated here.
type CreateDataCenter struct {
	Name             string   `json:"name" validate:"required,dcname"`
	Description      string   `json:"description" validate:"max=1024"`
	Location         string   `json:"location" validate:"required,min=1,max=255"`
	Provider         string   `json:"provider" validate:"required,min=1,max=255"`
	Design           string   `json:"design" validate:"required,min=1,max=255"`
	Strategy         string   `json:"strategy" validate:"required"`
	Emulation        bool     `json:"emulation"`
	ManagementSubnet string   `json:"management_subnet" validate:"required,cidr"`
	CustomerSubnet   string   `json:"customer_subnet" validate:"required,cidr"`
	TechnicalSubnet  string   `json:"technical_subnet" validate:"required,cidr"`
	MemberGroups     []string `json:"member_groups" validate:"omitempty,dive,min=1"`
}

// ToModel converts the request body into the stored request payload.
func (r CreateDataCenter) ToModel() model.DataCenterRequest {
	return model.DataCenterRequest{
		Name:             r.Name,
		Description:      r.Description,
		Location:         r.Location,
		Provider:         r.Provider,
		Design:           r.Design,
		Strategy:         r.Strategy,
		Emulation:        r.Emulation,
		ManagementSubnet: r.ManagementSubnet,
		CustomerSubnet:   r.CustomerSubnet,
		TechnicalSubnet:  r.TechnicalSubnet,
		MemberGroups:     r.MemberGroups,
	}
}
