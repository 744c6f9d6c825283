package cart

// Service orchestrates cart operations and guards the repository against
// invalid ids and quantities.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Add(customerID, productID, qty int) (Line, error) {
	if customerID <= 0 {
		return Line{}, ErrInvalidCustomer
	}
	if productID <= 0 {
		return Line{}, ErrInvalidProduct
	}
	// adds never clamp; removing an item goes through SetQuantity or Remove
	if qty <= 0 {
		return Line{}, ErrInvalidQuantity
	}
	return s.repo.Add(customerID, productID, qty)
}

// SetQuantity overwrites a line's quantity. A non-positive qty removes the
// line and is not an error.
func (s *Service) SetQuantity(customerID, productID, qty int) (bool, error) {
	if customerID <= 0 {
		return false, ErrInvalidCustomer
	}
	if productID <= 0 {
		return false, ErrInvalidProduct
	}
	return s.repo.SetQuantity(customerID, productID, qty)
}

func (s *Service) Remove(customerID, productID int) (bool, error) {
	if customerID <= 0 {
		return false, ErrInvalidCustomer
	}
	if productID <= 0 {
		return false, ErrInvalidProduct
	}
	return s.repo.Remove(customerID, productID)
}

func (s *Service) Items(customerID int) ([]LineView, error) {
	if customerID <= 0 {
		return nil, ErrInvalidCustomer
	}
	return s.repo.Items(customerID)
}

func (s *Service) Summary(customerID int) (Summary, error) {
	if customerID <= 0 {
		return Summary{}, ErrInvalidCustomer
	}
	return s.repo.Summary(customerID)
}

func (s *Service) Empty(customerID int) error {
	if customerID <= 0 {
		return ErrInvalidCustomer
	}
	return s.repo.Empty(customerID)
}

func (s *Service) Count(customerID int) (int, error) {
	if customerID <= 0 {
		return 0, ErrInvalidCustomer
	}
	return s.repo.Count(customerID)
}

func (s *Service) IsEmpty(customerID int) (bool, error) {
	n, err := s.Count(customerID)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}
