package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"as-system/internal/controllers"
	"as-system/internal/listeners"
	"as-system/internal/repositories"
	"as-system/internal/services"
	"as-system/pkg/eventbus"
	"as-system/pkg/middleware"
	"as-system/pkg/service"
	"as-system/pkg/sms"
)

// InitRouter собирает весь граф зависимостей: репозитории, сервисы,
// слушатели и контроллеры, и вешает маршруты на echo.
func InitRouter(
	e *echo.Echo,
	dbConn *pgxpool.Pool,
	redisClient *redis.Client,
	jwtSvc service.JWTService,
	bus *eventbus.Bus,
	smsSender sms.Sender,
	logger *zap.Logger,
) {
	logger.Info("InitRouter: начало создания маршрутов")

	api := e.Group("/api")
	authMW := middleware.NewAuthMiddleware(jwtSvc, logger)
	txManager := repositories.NewTxManager(dbConn)

	// --- РЕПОЗИТОРИИ ---
	employeeRepo := repositories.NewEmployeeRepository(dbConn)
	customerRepo := repositories.NewCustomerRepository(dbConn)
	productRepo := repositories.NewCustomerProductRepository(dbConn)
	requestRepo := repositories.NewRequestRepository(dbConn)
	assignmentRepo := repositories.NewAssignmentRepository(dbConn)
	cacheRepo := repositories.NewRedisCacheRepository(redisClient)

	// --- СЕРВИСЫ ---
	authService := services.NewAuthService(employeeRepo, cacheRepo, jwtSvc, logger)
	employeeService := services.NewEmployeeService(employeeRepo, logger)
	customerService := services.NewCustomerService(customerRepo, productRepo, logger)
	requestService := services.NewRequestService(
		txManager, requestRepo, assignmentRepo, employeeRepo, customerRepo, productRepo, bus, logger,
	)
	assignmentService := services.NewAssignmentService(
		txManager, requestRepo, assignmentRepo, employeeRepo, bus, logger,
	)
	reportService := services.NewReportService(requestService, logger)

	// --- СЛУШАТЕЛИ ---
	notificationListener := listeners.NewNotificationListener(employeeRepo, smsSender, logger)
	notificationListener.Register(bus)

	// --- КОНТРОЛЛЕРЫ ---
	authController := controllers.NewAuthController(authService, logger)
	employeeController := controllers.NewEmployeeController(employeeService, logger)
	customerController := controllers.NewCustomerController(customerService, logger)
	productController := controllers.NewCustomerProductController(customerService, logger)
	requestController := controllers.NewRequestController(requestService, logger)
	assignmentController := controllers.NewAssignmentController(assignmentService, logger)
	reportController := controllers.NewReportController(reportService, logger)

	// --- РОУТЕРЫ ---
	secureGroup := api.Group("", authMW.Auth)

	runAuthRouter(api, authController)
	runEmployeeRouter(secureGroup, employeeController)
	runCustomerRouter(secureGroup, customerController, productController)
	runRequestRouter(secureGroup, requestController, assignmentController)
	runReportRouter(secureGroup, reportController)

	logger.Info("InitRouter: маршруты созданы")
}
