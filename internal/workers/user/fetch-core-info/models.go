// internal/workers/user/fetch-core-info/models.go
package fetchcoreinfo

type Input struct {
	UserID string `json:"userId"`
}

// Output carries the core profile exactly as the core service returned it.
type Output struct {
	UserCoreInfo map[string]interface{} `json:"userCoreInfo"`
}
