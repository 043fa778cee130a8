package mocks

//go:generate mockgen -destination=./mock_provider.go -package=mocks github.com/rxtech-lab/argo-threshold/pkg/marketdata/provider Provider
//go:generate mockgen -destination=./mock_result_store.go -package=mocks github.com/rxtech-lab/argo-threshold/internal/store ResultStore
//go:generate mockgen -destination=./mock_indicator_registry.go -package=mocks github.com/rxtech-lab/argo-threshold/internal/indicator IndicatorRegistry
