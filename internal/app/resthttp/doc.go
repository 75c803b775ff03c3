// Package resthttp реализует HTTP-интерфейс сервиса конвертации изображений в WebP:
//   - POST {route_path} — multipart/form-data с полем `file`, ответ image/webp.
//     400 {"error":"No file uploaded"} если поля нет, 500 {"error":"Failed to process image"}
//     при любом сбое чтения или перекодирования, 413 при превышении max_upload_bytes.
//   - GET /health — признак живости для health-check'ов.
//   - GET /admin/config — текущая конфигурация.
package resthttp
