package store

import "peerlend/internal/models"

type ContractStore struct {
	contracts []*models.SmartContract
	byID      map[string]*models.SmartContract
}

func NewContractStore() *ContractStore {
	return &ContractStore{
		byID: make(map[string]*models.SmartContract),
	}
}

func (s *ContractStore) Create(contract models.SmartContract) {
	stored := contract.Clone()
	s.contracts = append(s.contracts, &stored)
	s.byID[stored.ID] = &stored
}

// GetByID returns the stored record itself; callers mutate it in place.
func (s *ContractStore) GetByID(contractID string) (*models.SmartContract, error) {
	contract, ok := s.byID[contractID]
	if !ok {
		return nil, ErrNotFound
	}
	return contract, nil
}

// List returns copies of the contracts accepted by keep, in creation order.
func (s *ContractStore) List(keep func(models.SmartContract) bool) []models.SmartContract {
	out := make([]models.SmartContract, 0)
	for _, contract := range s.contracts {
		if keep == nil || keep(*contract) {
			out = append(out, contract.Clone())
		}
	}
	return out
}

func (s *ContractStore) Count() int {
	return len(s.contracts)
}
