// Package api provides the data center catalog REST API.
//
//	@title						Data Center Catalog API
//	@version					1.0
//	@description				Data center provisioning and catalog API
//	@BasePath					/api/v1
//	@securityDefinitions.apikey	ApiKeyAuth
//	@in							header
//	@name						X-API-Key
package api
