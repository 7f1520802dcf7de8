package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

func main() {
	baseURL := flag.String("url", "http://localhost:8080/api/v1", "адрес API")
	topology := flag.String("type", "Four-Way", "тип перекрестка")
	strategy := flag.String("strategy", "weighted", "weighted или genetic")
	output := flag.String("out", "", "куда сохранить CSV с планами")
	flag.Parse()

	// Проверяем health endpoint
	fmt.Println("Проверяем health endpoint...")
	resp, err := http.Get(*baseURL + "/health")
	if err != nil {
		fmt.Printf("Ошибка при обращении к health endpoint: %v\n", err)
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		fmt.Printf("Ошибка чтения ответа: %v\n", err)
		return
	}
	fmt.Printf("Health check ответ (статус %d):\n%s\n\n", resp.StatusCode, string(body))

	if flag.NArg() == 0 {
		fmt.Println("Для оптимизации запустите: go run ./cmd/testclient [-type T-Junction] <путь_к_csv>")
		return
	}

	csvPath := flag.Arg(0)
	fmt.Printf("Отправляем датасет %s на оптимизацию...\n", csvPath)
	if err := testOptimize(*baseURL, csvPath, *topology, *strategy, *output); err != nil {
		fmt.Printf("Ошибка при тестировании оптимизации: %v\n", err)
	}
}

func testOptimize(baseURL, csvPath, topology, strategy, output string) error {
	data, err := os.ReadFile(csvPath)
	if err != nil {
		return fmt.Errorf("ошибка чтения CSV файла: %w", err)
	}

	// Создаем multipart form
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filepath.Base(csvPath))
	if err != nil {
		return fmt.Errorf("ошибка создания form field: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("ошибка записи CSV: %w", err)
	}
	writer.WriteField("intersection_type", topology)
	writer.WriteField("strategy", strategy)
	writer.Close()

	client := &http.Client{Timeout: time.Minute}
	req, err := http.NewRequest(http.MethodPost, baseURL+"/optimize", &body)
	if err != nil {
		return fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка отправки запроса: %w", err)
	}
	defer resp.Body.Close()

	result, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("ошибка чтения ответа: %w", err)
	}

	fmt.Printf("Ответ получен за %v (статус %d)\n", time.Since(start), resp.StatusCode)
	fmt.Printf("Ночная рекомендация: %s\n", resp.Header.Get("X-Night-Advisory"))
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("сервер вернул ошибку: %s", string(result))
	}

	if output == "" {
		fmt.Println(string(result))
		return nil
	}
	if err := os.WriteFile(output, result, 0644); err != nil {
		return fmt.Errorf("ошибка сохранения результата: %w", err)
	}
	fmt.Printf("Планы сохранены в %s\n", output)
	return nil
}
