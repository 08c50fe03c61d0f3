package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"maintenance-system/internal/controllers"
	"maintenance-system/internal/repositories"
	"maintenance-system/internal/services"
	"maintenance-system/pkg/config"
	"maintenance-system/pkg/middleware"
	"maintenance-system/pkg/service"
)

func InitRouter(e *echo.Echo, dbConn *pgxpool.Pool, redisClient *redis.Client, jwtSvc service.JWTService, logger *zap.Logger, cfg *config.Config) {
	logger.Info("InitRouter: Начало создания маршрутов")

	// --- 0. ОБЩИЕ КОМПОНЕНТЫ ---
	api := e.Group("/api")
	authMW := middleware.NewAuthMiddleware(jwtSvc, logger)
	txManager := repositories.NewTxManager(dbConn)

	// --- 1. РЕПОЗИТОРИИ ---
	machineRepo := repositories.NewMachineRepository(dbConn)
	scheduleRepo := repositories.NewScheduleRepository(dbConn)
	recordRepo := repositories.NewRecordRepository(dbConn)
	historyRepo := repositories.NewMachineHistoryRepository(dbConn)
	dashboardRepo := repositories.NewDashboardRepository(dbConn, logger)
	reportRepo := repositories.NewReportRepository(dbConn)
	cacheRepo := repositories.NewRedisCacheRepository(redisClient)

	// --- 2. СЕРВИСЫ ---
	machineService := services.NewMachineService(machineRepo, historyRepo, cacheRepo, txManager, logger, cfg.Schedule.MachineCacheTTL)
	scheduleService := services.NewScheduleService(scheduleRepo, machineRepo, txManager, logger, cfg.Schedule.LookaheadDays)
	recordService := services.NewRecordService(recordRepo, scheduleRepo, machineRepo, txManager, logger)
	historyService := services.NewMachineHistoryService(historyRepo, machineRepo, logger)
	dashboardService := services.NewDashboardService(dashboardRepo, logger, cfg.Schedule.LookaheadDays)
	reportService := services.NewReportService(reportRepo, logger)

	// --- 3. КОНТРОЛЛЕРЫ ---
	machineCtrl := controllers.NewMachineController(machineService, logger)
	scheduleCtrl := controllers.NewScheduleController(scheduleService, logger)
	recordCtrl := controllers.NewRecordController(recordService, logger)
	historyCtrl := controllers.NewMachineHistoryController(historyService, logger)
	dashboardCtrl := controllers.NewDashboardController(dashboardService, logger)
	reportCtrl := controllers.NewReportController(reportService, logger)

	// --- 4. РОУТЕРЫ ---
	secureGroup := api.Group("", authMW.Auth)

	runMachineRouter(secureGroup, machineCtrl, historyCtrl)
	runScheduleRouter(secureGroup, scheduleCtrl)
	runRecordRouter(secureGroup, recordCtrl)
	runDashboardRouter(secureGroup, dashboardCtrl)
	runReportRouter(secureGroup, reportCtrl)

	logger.Info("InitRouter: Создание маршрутов завершено")
}
