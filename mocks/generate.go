package mocks

//go:generate mockgen -destination=./mock_trigger.go -package=mocks github.com/rxtech-lab/argo-trend/internal/trigger Trigger
//go:generate mockgen -destination=./mock_reading_source.go -package=mocks github.com/rxtech-lab/argo-trend/internal/datasource ReadingSource
