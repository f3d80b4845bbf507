package main

import (
	"log"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/medatechnology/goutil/utils"
	"github.com/medatechnology/simplehttp"
	"github.com/medatechnology/simplehttp/framework/fiber"

	"github.com/haruteam/dermai"
	"github.com/haruteam/dermai/advisor"
	"github.com/haruteam/dermai/httpapi"
	"github.com/haruteam/dermai/middleware"
	"github.com/haruteam/dermai/predict"
	"github.com/haruteam/dermai/provider"
	"github.com/haruteam/dermai/workflow"
)

func main() {
	_ = godotenv.Load()

	// Prediction backend: mock by default so the UI can be developed
	// without a live classifier
	useMock := utils.GetEnvString("DERMAI_USE_MOCK_PREDICTION", "true") == "true"
	var classifier predict.Classifier
	if useMock {
		log.Println("⚠️  Mock prediction mode: results are random")
		classifier = predict.NewMockClassifier()
	} else {
		endpoint := utils.GetEnvString("DERMAI_PREDICT_ENDPOINT", predict.DefaultEndpoint)
		classifier = predict.NewHTTPClassifier(endpoint)
	}

	// Generative service: Gemini with request logging
	gemini := provider.NewGeminiFromEnv()
	client := dermai.NewClient(gemini,
		dermai.WithMiddleware(middleware.GoutilLogger(1)),
	)

	flow := workflow.New(classifier, advisor.New(client))

	// Create HTTP server
	config := simplehttp.LoadConfig()
	if config.Port == "" {
		config.Port = "8080"
	}
	server := fiber.NewServer(config)

	server.Use(simplehttp.MiddlewareRequestID())
	server.Use(simplehttp.MiddlewareLogger(simplehttp.NewDefaultLogger()))

	server.GET("/health", func(c simplehttp.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":   "healthy",
			"provider": client.Provider().Name(),
		})
	})

	api := server.Group("/api/v1")
	api.GET("/case", httpapi.CaseHandler(flow))
	api.POST("/case/image", httpapi.UploadHandler(flow))
	api.POST("/case/answers", httpapi.AnswerHandler(flow))
	api.POST("/case/submit", httpapi.SubmitHandler(flow))
	api.POST("/case/reset", httpapi.ResetHandler(flow))
	api.GET("/case/export", httpapi.ExportHandler(flow))
	api.POST("/chat", httpapi.ChatHandler(flow))
	api.POST("/clinics", httpapi.ClinicsHandler(flow))

	log.Printf("🚀 DermAI server starting on port %s", config.Port)
	log.Println("Endpoints:")
	log.Println("  GET  /health                - Health check")
	log.Println("  GET  /api/v1/case           - Session state")
	log.Println("  POST /api/v1/case/image     - Upload lesion image")
	log.Println("  POST /api/v1/case/answers   - Answer a question")
	log.Println("  POST /api/v1/case/submit    - Submit questionnaire")
	log.Println("  POST /api/v1/case/reset     - Start over")
	log.Println("  GET  /api/v1/case/export    - Plain-text report")
	log.Println("  POST /api/v1/chat           - Follow-up chat")
	log.Println("  POST /api/v1/clinics        - Nearby clinics")

	if err := server.Start(":" + config.Port); err != nil {
		log.Fatal(err)
	}
}
