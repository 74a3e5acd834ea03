package service

import (
	"context"

	"github.com/campthai/campthai-backend/internal/domain"
	"github.com/campthai/campthai-backend/internal/repository/ports"
)

type ProvinceService struct {
	provinces ports.ProvinceRepository
}

func NewProvinceService(provinceRepo ports.ProvinceRepository) *ProvinceService {
	return &ProvinceService{provinces: provinceRepo}
}

func (s *ProvinceService) List(ctx context.Context) ([]domain.Province, error) {
	provinces, err := s.provinces.List(ctx)
	if err != nil {
		return nil, err
	}
	if provinces == nil {
		provinces = []domain.Province{}
	}
	return provinces, nil
}

func (s *ProvinceService) GetByID(ctx context.Context, id int) (*domain.Province, error) {
	province, err := s.provinces.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrProvinceNotFound
		}
		return nil, err
	}
	return province, nil
}
