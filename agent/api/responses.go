package api

import (
	"net/http"

	"github.com/absmach/cartridge/agent"
	"github.com/absmach/cartridge/repository"
	"github.com/absmach/supermq"
)

var (
	_ supermq.Response = (*statusResponse)(nil)
	_ supermq.Response = (*listRepositoriesResponse)(nil)
)

type statusResponse struct {
	agent.Status
}

func (s statusResponse) Code() int {
	return http.StatusOK
}

func (s statusResponse) Headers() map[string]string {
	return map[string]string{}
}

func (s statusResponse) Empty() bool {
	return false
}

type listRepositoriesResponse struct {
	Total        uint64             `json:"total"`
	Repositories []repository.State `json:"repositories"`
}

func (l listRepositoriesResponse) Code() int {
	return http.StatusOK
}

func (l listRepositoriesResponse) Headers() map[string]string {
	return map[string]string{}
}

func (l listRepositoriesResponse) Empty() bool {
	return false
}
