package main

//go:generate swag init -g cmd/forge/main.go -o docs

// @title           Forge Content API
// @version         0.1.0
// @description     Strategy catalog, blog, and AI/SEO export endpoints.
// @host            localhost:8080
// @BasePath        /
// @schemes         http

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
