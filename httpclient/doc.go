// Package httpclient is the outbound HTTP client used by HTTP inference
// backends. It resolves paths against a base URL, encodes JSON and
// multipart bodies, and turns transport failures and non-2xx statuses
// into typed *Error values that callers classify.
//
//	client, err := httpclient.New(httpclient.Config{
//	    BaseURL: "http://gpu-1:9000",
//	    Timeout: 5 * time.Minute,
//	})
//
//	resp, err := client.Do(ctx, httpclient.Request{
//	    Method: http.MethodPost,
//	    Path:   "/transcribe",
//	    Body: &httpclient.MultipartBody{
//	        Fields: map[string]string{"model": "large-v3"},
//	        Files:  []httpclient.FileField{{FieldName: "file", FileName: "a.wav", Data: audio}},
//	    },
//	})
package httpclient
